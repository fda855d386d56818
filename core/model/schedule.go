package model

import "time"

// PowerSource tags where a device's allocation predominantly comes from.
type PowerSource string

const (
	SourceSolar     PowerSource = "solar"
	SourceBattery   PowerSource = "battery"
	SourceGenerator PowerSource = "generator"
	SourceGrid      PowerSource = "grid"
	SourceNone      PowerSource = "none"
)

// DeviceAllocation records the power granted to one device in one slot.
type DeviceAllocation struct {
	DeviceID string      `json:"device_id"`
	PowerKW  float64     `json:"power_kw"`
	Source   PowerSource `json:"source"`
}

// ScheduleTimeSlot is the dispatch decision for a single interval.
//
// SolarAvailableKW is the forecast supply; SolarGenerationKW is the solar
// power actually consumed, stored or exported. The power balance
//
//	solar_generation + battery_discharge + grid_import + generator = load + battery_charge + grid_export
//
// holds over served load for every slot; curtailed solar is the difference
// between available and generation.
type ScheduleTimeSlot struct {
	Time               time.Time          `json:"time"`
	SolarAvailableKW   float64            `json:"solar_available_kw"`
	SolarGenerationKW  float64            `json:"solar_generation_kw"`
	TotalLoadKW        float64            `json:"total_load_kw"`
	UnservedLoadKW     float64            `json:"unserved_load_kw"`
	BatteryChargeKW    float64            `json:"battery_charge_kw"`
	BatteryDischargeKW float64            `json:"battery_discharge_kw"`
	BatterySoC         float64            `json:"battery_soc"`
	GridImportKW       float64            `json:"grid_import_kw"`
	GridExportKW       float64            `json:"grid_export_kw"`
	GeneratorPowerKW   float64            `json:"generator_power_kw"`
	Devices            []DeviceAllocation `json:"devices"`
}

// OptimizationMetrics summarizes a full schedule. Derived purely from the
// slot sequence.
type OptimizationMetrics struct {
	SolarUtilizationPct    float64 `json:"solar_utilization_pct"`
	GridImportReductionPct float64 `json:"grid_import_reduction_pct"`
	CostSavings            float64 `json:"cost_savings"`
	BatteryCycleEfficiency float64 `json:"battery_cycle_efficiency"`
	CarbonReductionKg      float64 `json:"carbon_reduction_kg"`
	GeneratorRuntimeMin    float64 `json:"generator_runtime_min"`

	TotalEnergyKWh      float64 `json:"total_energy_kwh"`
	SolarEnergyKWh      float64 `json:"solar_energy_kwh"`
	GridImportKWh       float64 `json:"grid_import_kwh"`
	GridExportKWh       float64 `json:"grid_export_kwh"`
	BatteryChargeKWh    float64 `json:"battery_charge_kwh"`
	BatteryDischargeKWh float64 `json:"battery_discharge_kwh"`
	GeneratorEnergyKWh  float64 `json:"generator_energy_kwh"`

	GridImportCost    float64 `json:"grid_import_cost"`
	GridExportRevenue float64 `json:"grid_export_revenue"`
	GeneratorFuelCost float64 `json:"generator_fuel_cost"`
}

// Schedule is the aggregate output of one scheduling run. Immutable after
// creation; ID and CreatedAt are assigned by the schedule store at
// persistence time so that planning itself stays deterministic.
type Schedule struct {
	ID          string              `json:"id,omitempty"`
	MicrogridID string              `json:"microgrid_id"`
	Date        time.Time           `json:"date"`
	Mode        OptimizationMode    `json:"optimization_mode"`
	InitialSoC  float64             `json:"initial_soc"`
	FinalSoC    float64             `json:"final_soc"`
	Slots       []ScheduleTimeSlot  `json:"slots"`
	Metrics     OptimizationMetrics `json:"metrics"`
	CreatedAt   time.Time           `json:"created_at,omitempty"`
}
