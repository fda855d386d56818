package planner

import (
	"math"
	"time"

	"github.com/kilianp07/microgrid/core/grid"
	"github.com/kilianp07/microgrid/core/model"
)

// Aggregate reduces a slot sequence into OptimizationMetrics. It is a pure
// function of the slots and the tariff/fuel parameters; an empty sequence
// yields all-zero metrics.
func Aggregate(slots []model.ScheduleTimeSlot, cfg model.SystemConfiguration, interval time.Duration) model.OptimizationMetrics {
	var m model.OptimizationMetrics
	if len(slots) == 0 {
		return m
	}
	broker := grid.New(cfg)
	h := interval.Hours()

	var solarAvailKWh, baselineCost float64
	for _, s := range slots {
		rate := broker.ImportRate(s.Time.Hour())

		m.TotalEnergyKWh += s.TotalLoadKW * h
		m.SolarEnergyKWh += s.SolarGenerationKW * h
		m.GridImportKWh += s.GridImportKW * h
		m.GridExportKWh += s.GridExportKW * h
		m.BatteryChargeKWh += s.BatteryChargeKW * h
		m.BatteryDischargeKWh += s.BatteryDischargeKW * h
		m.GeneratorEnergyKWh += s.GeneratorPowerKW * h
		solarAvailKWh += s.SolarAvailableKW * h

		m.GridImportCost += s.GridImportKW * h * rate
		m.GridExportRevenue += s.GridExportKW * h * cfg.GridExportRate
		// Baseline: the same served load drawn entirely from the grid.
		baselineCost += s.TotalLoadKW * h * rate

		if s.GeneratorPowerKW > 0 {
			m.GeneratorRuntimeMin += interval.Minutes()
		}
	}
	m.GeneratorFuelCost = m.GeneratorEnergyKWh * cfg.GeneratorFuelLPerKWh * cfg.GeneratorFuelCostPerL

	if solarAvailKWh > 0 {
		m.SolarUtilizationPct = 100 * m.SolarEnergyKWh / solarAvailKWh
	}
	if m.TotalEnergyKWh > 0 {
		m.GridImportReductionPct = 100 * (1 - m.GridImportKWh/m.TotalEnergyKWh)
	}
	if m.BatteryChargeKWh > 0 {
		m.BatteryCycleEfficiency = m.BatteryDischargeKWh / m.BatteryChargeKWh
	}

	actualCost := m.GridImportCost + m.GeneratorFuelCost - m.GridExportRevenue
	m.CostSavings = baselineCost - actualCost

	carbon := m.SolarEnergyKWh*cfg.GridCarbonKgPerKWh -
		m.GeneratorEnergyKWh*math.Max(0, cfg.GeneratorCarbonKgPerKWh-cfg.GridCarbonKgPerKWh)
	m.CarbonReductionKg = math.Max(0, carbon)

	return m
}
