package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/microgrid/core/model"
)

const sampleYAML = `
microgrid_id: farm-01
system:
  battery_capacity_kwh: 20
  max_charge_rate_kw: 5
  max_discharge_rate_kw: 5
  round_trip_efficiency: 0.9
  min_soc: 0.2
  max_soc: 0.95
  initial_soc: 0.5
  grid_peak_rate: 0.30
  grid_off_peak_rate: 0.10
  peak_start_hour: 17
  peak_end_hour: 21
  grid_export_enabled: true
  generator_max_power_kw: 8
  optimization_mode: grid_independence
devices:
  - id: fridge
    name: fridge
    rated_power_w: 150
    type: essential
  - id: washer
    name: washing machine
    rated_power_w: 2000
    type: flexible
    window_start_hour: 10
    window_end_hour: 16
scheduler:
  interval_minutes: 15
  scenario: p10
store:
  backend: sqlite
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "farm-01", cfg.MicrogridID)

	sys, err := cfg.System.ToModel()
	require.NoError(t, err)
	assert.Equal(t, model.ModeGridIndependence, sys.Mode)
	assert.InDelta(t, 20, sys.BatteryCapacityKWh, 1e-9)
	// Carbon factors default when omitted.
	assert.InDelta(t, 0.4, sys.GridCarbonKgPerKWh, 1e-9)
	assert.InDelta(t, 0.7, sys.GeneratorCarbonKgPerKWh, 1e-9)

	devices, err := cfg.DeviceList()
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, model.DeviceEssential, devices[0].Type)
	assert.True(t, devices[0].Active, "active defaults to true")
	require.NotNil(t, devices[1].Window)
	assert.Equal(t, 10, devices[1].Window.StartHour)

	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Interval())
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.Horizon(), "horizon defaults to a day")
	band, err := cfg.Scheduler.Band()
	require.NoError(t, err)
	assert.Equal(t, model.BandP10, band)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "schedules.db", cfg.Store.Path, "sqlite path defaults")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MG_MICROGRID_ID", "override")
	t.Setenv("MG_SCHEDULER__INTERVAL_MINUTES", "30")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.MicrogridID)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.Interval())
}

func TestLoadRejectsInvalid(t *testing.T) {
	bad := `
system:
  battery_capacity_kwh: 0
`
	_, err := Load(writeConfig(t, bad))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownScenario(t *testing.T) {
	cfg := sampleYAML + "\n"
	t.Setenv("MG_SCHEDULER__SCENARIO", "p42")
	_, err := Load(writeConfig(t, cfg))
	assert.Error(t, err)
}
