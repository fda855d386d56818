package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/microgrid/core/model"
)

func sampleSchedule() *model.Schedule {
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return &model.Schedule{
		ID:          "s-1",
		MicrogridID: "mg-1",
		Date:        day,
		Mode:        model.ModeCost,
		Slots: []model.ScheduleTimeSlot{
			{Time: day, SolarAvailableKW: 0, TotalLoadKW: 2, GridImportKW: 2, BatterySoC: 0.5},
			{Time: day.Add(time.Hour), SolarAvailableKW: 5, SolarGenerationKW: 5, TotalLoadKW: 2, BatteryChargeKW: 3, BatterySoC: 0.62},
		},
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleSchedule()))

	var got model.Schedule
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "s-1", got.ID)
	assert.Len(t, got.Slots, 2)
	assert.Equal(t, model.ModeCost, got.Mode)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSchedule()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "2026-06-01T00:00:00Z", rows[1][0])
	assert.Equal(t, "2", rows[1][3]) // total_load_kw
	assert.Equal(t, "3", rows[2][5]) // battery_charge_kw
	assert.Equal(t, "0.62", rows[2][7])
}

func TestWriteCSVEmptySchedule(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &model.Schedule{}))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
