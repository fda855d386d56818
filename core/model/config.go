package model

import "fmt"

// OptimizationMode selects the dispatch policy applied during planning.
type OptimizationMode int

const (
	ModeCost OptimizationMode = iota
	ModeBatteryLongevity
	ModeGridIndependence
)

// String returns a human-readable representation of the mode.
func (m OptimizationMode) String() string {
	switch m {
	case ModeCost:
		return "cost"
	case ModeBatteryLongevity:
		return "battery_longevity"
	case ModeGridIndependence:
		return "grid_independence"
	default:
		return "unknown"
	}
}

// ParseOptimizationMode converts a configuration string to a mode.
func ParseOptimizationMode(s string) (OptimizationMode, error) {
	switch s {
	case "cost":
		return ModeCost, nil
	case "battery_longevity":
		return ModeBatteryLongevity, nil
	case "grid_independence":
		return ModeGridIndependence, nil
	default:
		return 0, fmt.Errorf("unknown optimization mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m OptimizationMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *OptimizationMode) UnmarshalText(b []byte) error {
	v, err := ParseOptimizationMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// SystemConfiguration holds the physical and economic parameters of the
// microgrid. It is a read-only snapshot for the duration of a run.
type SystemConfiguration struct {
	BatteryCapacityKWh  float64 `json:"battery_capacity_kwh"`
	MaxChargeRateKW     float64 `json:"max_charge_rate_kw"`
	MaxDischargeRateKW  float64 `json:"max_discharge_rate_kw"`
	RoundTripEfficiency float64 `json:"round_trip_efficiency"` // 0..1
	MinSoC              float64 `json:"min_soc"`               // fraction of capacity
	MaxSoC              float64 `json:"max_soc"`               // fraction of capacity
	InitialSoC          float64 `json:"initial_soc"`

	GridPeakRate      float64 `json:"grid_peak_rate"`     // currency/kWh
	GridOffPeakRate   float64 `json:"grid_off_peak_rate"` // currency/kWh
	PeakStartHour     int     `json:"peak_start_hour"`
	PeakEndHour       int     `json:"peak_end_hour"`
	GridExportRate    float64 `json:"grid_export_rate"` // currency/kWh
	GridExportEnabled bool    `json:"grid_export_enabled"`
	GridMaxImportKW   float64 `json:"grid_max_import_kw"` // 0 = unlimited

	GeneratorFuelLPerKWh       float64 `json:"generator_fuel_l_per_kwh"`
	GeneratorFuelCostPerL      float64 `json:"generator_fuel_cost_per_l"`
	GeneratorMinRuntimeMinutes int     `json:"generator_min_runtime_minutes"`
	GeneratorMaxPowerKW        float64 `json:"generator_max_power_kw"`

	GridCarbonKgPerKWh      float64 `json:"grid_carbon_kg_per_kwh"`
	GeneratorCarbonKgPerKWh float64 `json:"generator_carbon_kg_per_kwh"`

	Mode         OptimizationMode `json:"optimization_mode"`
	SafetyMargin float64          `json:"safety_margin"` // fraction reserved for critical loads
}

// PeakHour reports whether the given hour of day falls in the peak tariff window.
func (c SystemConfiguration) PeakHour(hour int) bool {
	w := HourWindow{StartHour: c.PeakStartHour, EndHour: c.PeakEndHour}
	return w.Contains(hour)
}

// Validate checks the configuration invariants.
func (c SystemConfiguration) Validate() error {
	if c.BatteryCapacityKWh <= 0 {
		return fmt.Errorf("battery capacity must be positive")
	}
	if c.MaxChargeRateKW <= 0 || c.MaxDischargeRateKW <= 0 {
		return fmt.Errorf("battery charge and discharge rates must be positive")
	}
	if c.RoundTripEfficiency <= 0 || c.RoundTripEfficiency > 1 {
		return fmt.Errorf("round-trip efficiency must be in (0, 1]")
	}
	if c.MinSoC < 0 || c.MinSoC >= c.MaxSoC || c.MaxSoC > 1 {
		return fmt.Errorf("soc bounds must satisfy 0 <= min_soc < max_soc <= 1")
	}
	if c.InitialSoC < c.MinSoC || c.InitialSoC > c.MaxSoC {
		return fmt.Errorf("initial soc %.3f outside [%.3f, %.3f]", c.InitialSoC, c.MinSoC, c.MaxSoC)
	}
	if c.SafetyMargin < 0 || c.SafetyMargin >= 1 {
		return fmt.Errorf("safety margin must be in [0, 1)")
	}
	if c.GeneratorMaxPowerKW < 0 || c.GeneratorMinRuntimeMinutes < 0 {
		return fmt.Errorf("generator limits must not be negative")
	}
	if c.GridMaxImportKW < 0 {
		return fmt.Errorf("grid import cap must not be negative")
	}
	return nil
}
