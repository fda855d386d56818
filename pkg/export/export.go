// Package export serializes dispatch schedules for downstream consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/microgrid/core/model"
)

// WriteJSON writes the full schedule to w in JSON format.
func WriteJSON(w io.Writer, s *model.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

var csvHeader = []string{
	"time",
	"solar_available_kw",
	"solar_generation_kw",
	"total_load_kw",
	"unserved_load_kw",
	"battery_charge_kw",
	"battery_discharge_kw",
	"battery_soc",
	"generator_power_kw",
	"grid_import_kw",
	"grid_export_kw",
}

// WriteCSV writes the per-slot power flows to w in CSV format.
func WriteCSV(w io.Writer, s *model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, slot := range s.Slots {
		rec := []string{
			slot.Time.Format(time.RFC3339),
			fmtKW(slot.SolarAvailableKW),
			fmtKW(slot.SolarGenerationKW),
			fmtKW(slot.TotalLoadKW),
			fmtKW(slot.UnservedLoadKW),
			fmtKW(slot.BatteryChargeKW),
			fmtKW(slot.BatteryDischargeKW),
			fmtKW(slot.BatterySoC),
			fmtKW(slot.GeneratorPowerKW),
			fmtKW(slot.GridImportKW),
			fmtKW(slot.GridExportKW),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtKW(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
