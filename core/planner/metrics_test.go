package planner

import (
	"math"
	"testing"
	"time"

	"github.com/kilianp07/microgrid/core/model"
)

func TestAggregateEmpty(t *testing.T) {
	if m := Aggregate(nil, planConfig(), time.Hour); m != (model.OptimizationMetrics{}) {
		t.Fatalf("expected zero metrics got %+v", m)
	}
}

func TestAggregateSums(t *testing.T) {
	cfg := planConfig()
	slots := []model.ScheduleTimeSlot{
		{
			Time:              day.Add(12 * time.Hour), // off-peak
			SolarAvailableKW:  10,
			SolarGenerationKW: 8,
			TotalLoadKW:       4,
			BatteryChargeKW:   4,
			BatterySoC:        0.6,
		},
		{
			Time:               day.Add(18 * time.Hour), // peak
			TotalLoadKW:        4,
			BatteryDischargeKW: 2,
			GridImportKW:       1,
			GeneratorPowerKW:   1,
			BatterySoC:         0.5,
		},
	}
	m := Aggregate(slots, cfg, time.Hour)

	energies := []struct {
		name string
		got  float64
		want float64
	}{
		{"total", m.TotalEnergyKWh, 8},
		{"solar", m.SolarEnergyKWh, 8},
		{"import", m.GridImportKWh, 1},
		{"charge", m.BatteryChargeKWh, 4},
		{"discharge", m.BatteryDischargeKWh, 2},
		{"generator", m.GeneratorEnergyKWh, 1},
	}
	for _, e := range energies {
		if math.Abs(e.got-e.want) > 1e-9 {
			t.Fatalf("%s energy: expected %v got %v", e.name, e.want, e.got)
		}
	}

	if math.Abs(m.SolarUtilizationPct-80) > 1e-9 {
		t.Fatalf("expected 80%% utilization got %v", m.SolarUtilizationPct)
	}
	if math.Abs(m.GridImportReductionPct-100*(1-1.0/8)) > 1e-9 {
		t.Fatalf("expected import reduction %v got %v", 100*(1-1.0/8), m.GridImportReductionPct)
	}
	if math.Abs(m.BatteryCycleEfficiency-0.5) > 1e-9 {
		t.Fatalf("expected cycle efficiency 0.5 got %v", m.BatteryCycleEfficiency)
	}
	if math.Abs(m.GeneratorRuntimeMin-60) > 1e-9 {
		t.Fatalf("expected 60 min runtime got %v", m.GeneratorRuntimeMin)
	}

	// Import cost: 1 kWh at the peak rate. Fuel: 1 kWh * 0.3 L * 1.5.
	if math.Abs(m.GridImportCost-0.30) > 1e-9 || math.Abs(m.GeneratorFuelCost-0.45) > 1e-9 {
		t.Fatalf("expected costs 0.30 / 0.45 got %v / %v", m.GridImportCost, m.GeneratorFuelCost)
	}

	// Baseline serves 4 kWh off-peak + 4 kWh peak from the grid.
	baseline := 4*0.10 + 4*0.30
	if math.Abs(m.CostSavings-(baseline-(0.30+0.45))) > 1e-9 {
		t.Fatalf("expected savings %v got %v", baseline-(0.30+0.45), m.CostSavings)
	}

	// Solar displaces grid carbon; the generator kWh costs the difference.
	wantCarbon := 8*0.4 - 1*(0.7-0.4)
	if math.Abs(m.CarbonReductionKg-wantCarbon) > 1e-9 {
		t.Fatalf("expected carbon %v got %v", wantCarbon, m.CarbonReductionKg)
	}
}

func TestAggregateCarbonNeverNegative(t *testing.T) {
	cfg := planConfig()
	slots := []model.ScheduleTimeSlot{
		{Time: day, TotalLoadKW: 2, GeneratorPowerKW: 2},
	}
	m := Aggregate(slots, cfg, time.Hour)
	if m.CarbonReductionKg < 0 {
		t.Fatalf("expected non-negative carbon got %v", m.CarbonReductionKg)
	}
}

func TestAggregateExportRevenue(t *testing.T) {
	cfg := planConfig()
	slots := []model.ScheduleTimeSlot{
		{Time: day, SolarAvailableKW: 10, SolarGenerationKW: 10, TotalLoadKW: 2, GridExportKW: 8},
	}
	m := Aggregate(slots, cfg, time.Hour)
	if math.Abs(m.GridExportKWh-8) > 1e-9 {
		t.Fatalf("expected 8 kWh exported got %v", m.GridExportKWh)
	}
	if math.Abs(m.GridExportRevenue-8*0.05) > 1e-9 {
		t.Fatalf("expected revenue %v got %v", 8*0.05, m.GridExportRevenue)
	}
	if math.Abs(m.SolarUtilizationPct-100) > 1e-9 {
		t.Fatalf("expected 100%% utilization got %v", m.SolarUtilizationPct)
	}
}
