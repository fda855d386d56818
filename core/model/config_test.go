package model

import "testing"

func validConfig() SystemConfiguration {
	return SystemConfiguration{
		BatteryCapacityKWh:  20,
		MaxChargeRateKW:     5,
		MaxDischargeRateKW:  5,
		RoundTripEfficiency: 0.9,
		MinSoC:              0.2,
		MaxSoC:              0.95,
		InitialSoC:          0.5,
		GridPeakRate:        0.30,
		GridOffPeakRate:     0.10,
		PeakStartHour:       17,
		PeakEndHour:         21,
		GeneratorMaxPowerKW: 8,
	}
}

func TestSystemConfigurationValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*SystemConfiguration)
	}{
		{"zero capacity", func(c *SystemConfiguration) { c.BatteryCapacityKWh = 0 }},
		{"zero charge rate", func(c *SystemConfiguration) { c.MaxChargeRateKW = 0 }},
		{"efficiency above one", func(c *SystemConfiguration) { c.RoundTripEfficiency = 1.2 }},
		{"inverted soc bounds", func(c *SystemConfiguration) { c.MinSoC = 0.9; c.MaxSoC = 0.5 }},
		{"initial soc below floor", func(c *SystemConfiguration) { c.InitialSoC = 0.1 }},
		{"safety margin of one", func(c *SystemConfiguration) { c.SafetyMargin = 1 }},
		{"negative generator power", func(c *SystemConfiguration) { c.GeneratorMaxPowerKW = -1 }},
		{"negative import cap", func(c *SystemConfiguration) { c.GridMaxImportKW = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestPeakHour(t *testing.T) {
	cfg := validConfig()
	if !cfg.PeakHour(17) || !cfg.PeakHour(20) {
		t.Fatalf("expected peak hours inside window")
	}
	if cfg.PeakHour(21) || cfg.PeakHour(8) {
		t.Fatalf("expected off-peak hours outside window")
	}
}

func TestParseOptimizationMode(t *testing.T) {
	for _, s := range []string{"cost", "battery_longevity", "grid_independence"} {
		m, err := ParseOptimizationMode(s)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if m.String() != s {
			t.Fatalf("expected %s got %s", s, m.String())
		}
	}
	if _, err := ParseOptimizationMode("cheapest"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
