package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/microgrid/core/model"
)

// SystemConfig mirrors model.SystemConfiguration with string enums so it
// can be decoded from plain configuration files.
type SystemConfig struct {
	BatteryCapacityKWh  float64 `json:"battery_capacity_kwh"`
	MaxChargeRateKW     float64 `json:"max_charge_rate_kw"`
	MaxDischargeRateKW  float64 `json:"max_discharge_rate_kw"`
	RoundTripEfficiency float64 `json:"round_trip_efficiency"`
	MinSoC              float64 `json:"min_soc"`
	MaxSoC              float64 `json:"max_soc"`
	InitialSoC          float64 `json:"initial_soc"`

	GridPeakRate      float64 `json:"grid_peak_rate"`
	GridOffPeakRate   float64 `json:"grid_off_peak_rate"`
	PeakStartHour     int     `json:"peak_start_hour"`
	PeakEndHour       int     `json:"peak_end_hour"`
	GridExportRate    float64 `json:"grid_export_rate"`
	GridExportEnabled bool    `json:"grid_export_enabled"`
	GridMaxImportKW   float64 `json:"grid_max_import_kw"`

	GeneratorFuelLPerKWh       float64 `json:"generator_fuel_l_per_kwh"`
	GeneratorFuelCostPerL      float64 `json:"generator_fuel_cost_per_l"`
	GeneratorMinRuntimeMinutes int     `json:"generator_min_runtime_minutes"`
	GeneratorMaxPowerKW        float64 `json:"generator_max_power_kw"`

	GridCarbonKgPerKWh      float64 `json:"grid_carbon_kg_per_kwh"`
	GeneratorCarbonKgPerKWh float64 `json:"generator_carbon_kg_per_kwh"`

	OptimizationMode string  `json:"optimization_mode"`
	SafetyMargin     float64 `json:"safety_margin"`
}

// ToModel converts and validates the system section.
func (c SystemConfig) ToModel() (model.SystemConfiguration, error) {
	mode := c.OptimizationMode
	if mode == "" {
		mode = "cost"
	}
	m, err := model.ParseOptimizationMode(mode)
	if err != nil {
		return model.SystemConfiguration{}, err
	}
	carbonGrid := c.GridCarbonKgPerKWh
	if carbonGrid == 0 {
		carbonGrid = 0.4
	}
	carbonGen := c.GeneratorCarbonKgPerKWh
	if carbonGen == 0 {
		carbonGen = 0.7
	}
	cfg := model.SystemConfiguration{
		BatteryCapacityKWh:         c.BatteryCapacityKWh,
		MaxChargeRateKW:            c.MaxChargeRateKW,
		MaxDischargeRateKW:         c.MaxDischargeRateKW,
		RoundTripEfficiency:        c.RoundTripEfficiency,
		MinSoC:                     c.MinSoC,
		MaxSoC:                     c.MaxSoC,
		InitialSoC:                 c.InitialSoC,
		GridPeakRate:               c.GridPeakRate,
		GridOffPeakRate:            c.GridOffPeakRate,
		PeakStartHour:              c.PeakStartHour,
		PeakEndHour:                c.PeakEndHour,
		GridExportRate:             c.GridExportRate,
		GridExportEnabled:          c.GridExportEnabled,
		GridMaxImportKW:            c.GridMaxImportKW,
		GeneratorFuelLPerKWh:       c.GeneratorFuelLPerKWh,
		GeneratorFuelCostPerL:      c.GeneratorFuelCostPerL,
		GeneratorMinRuntimeMinutes: c.GeneratorMinRuntimeMinutes,
		GeneratorMaxPowerKW:        c.GeneratorMaxPowerKW,
		GridCarbonKgPerKWh:         carbonGrid,
		GeneratorCarbonKgPerKWh:    carbonGen,
		Mode:                       m,
		SafetyMargin:               c.SafetyMargin,
	}
	return cfg, cfg.Validate()
}

// DeviceConfig mirrors model.Device for configuration files.
type DeviceConfig struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	RatedPowerW       float64 `json:"rated_power_w"`
	Type              string  `json:"type"`
	MinRuntimeMinutes int     `json:"min_runtime_minutes"`
	WindowStartHour   *int    `json:"window_start_hour"`
	WindowEndHour     *int    `json:"window_end_hour"`
	Priority          int     `json:"priority"`
	Active            *bool   `json:"active"`
}

// ToModel converts and validates one device entry.
func (c DeviceConfig) ToModel() (model.Device, error) {
	t, err := model.ParseDeviceType(c.Type)
	if err != nil {
		return model.Device{}, fmt.Errorf("device %s: %w", c.ID, err)
	}
	d := model.Device{
		ID:                c.ID,
		Name:              c.Name,
		RatedPowerW:       c.RatedPowerW,
		Type:              t,
		MinRuntimeMinutes: c.MinRuntimeMinutes,
		Priority:          c.Priority,
		Active:            c.Active == nil || *c.Active,
	}
	if c.WindowStartHour != nil && c.WindowEndHour != nil {
		d.Window = &model.HourWindow{StartHour: *c.WindowStartHour, EndHour: *c.WindowEndHour}
	}
	return d, d.Validate()
}

// DeviceList converts the whole device section.
func (c *Config) DeviceList() ([]model.Device, error) {
	out := make([]model.Device, 0, len(c.Devices))
	for _, dc := range c.Devices {
		d, err := dc.ToModel()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// SchedulerConfig defines planning resolution and forecast handling.
type SchedulerConfig struct {
	IntervalMinutes     int     `json:"interval_minutes"`
	HorizonHours        int     `json:"horizon_hours"`
	MaxForecastGapHours float64 `json:"max_forecast_gap_hours"`
	// Scenario selects the forecast band: p50 (default), p10 or p90.
	Scenario string `json:"scenario"`
}

// SetDefaults applies sane defaults.
func (c *SchedulerConfig) SetDefaults() {
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 10
	}
	if c.HorizonHours == 0 {
		c.HorizonHours = 24
	}
	if c.MaxForecastGapHours == 0 {
		c.MaxForecastGapHours = 3
	}
	if c.Scenario == "" {
		c.Scenario = "p50"
	}
}

// Validate checks mandatory fields.
func (c SchedulerConfig) Validate() error {
	if c.IntervalMinutes <= 0 || c.HorizonHours <= 0 {
		return fmt.Errorf("interval and horizon must be positive")
	}
	if _, err := c.Band(); err != nil {
		return err
	}
	return nil
}

// Interval returns the slot length.
func (c SchedulerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Horizon returns the planning window.
func (c SchedulerConfig) Horizon() time.Duration {
	return time.Duration(c.HorizonHours) * time.Hour
}

// MaxGap returns the forecast gap tolerance.
func (c SchedulerConfig) MaxGap() time.Duration {
	return time.Duration(c.MaxForecastGapHours * float64(time.Hour))
}

// Band returns the configured forecast band.
func (c SchedulerConfig) Band() (model.ForecastBand, error) {
	switch c.Scenario {
	case "", "p50":
		return model.BandP50, nil
	case "p10":
		return model.BandP10, nil
	case "p90":
		return model.BandP90, nil
	default:
		return 0, fmt.Errorf("unknown forecast scenario %q", c.Scenario)
	}
}

// StoreConfig selects the schedule store backend.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Backend == "sqlite" && c.Path == "" {
		c.Path = "schedules.db"
	}
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	if c.Backend != "memory" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown store backend %s", c.Backend)
	}
	return nil
}

// APIConfig configures the read-only HTTP surface.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}
