package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/microgrid/core/metrics"
	"github.com/kilianp07/microgrid/core/model"
	"github.com/kilianp07/microgrid/infra/logger"
)

// InfluxSink writes run summaries and slot sequences to an InfluxDB
// instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	base := strings.TrimSuffix(cfg.InfluxURL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink when the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one summary point per scheduling run.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_run").
		AddTag("microgrid_id", rec.MicrogridID).
		AddTag("mode", rec.Mode.String()).
		AddField("intervals", rec.Intervals).
		AddField("elapsed_ms", rec.Elapsed.Milliseconds()).
		AddField("total_energy_kwh", rec.Metrics.TotalEnergyKWh).
		AddField("solar_energy_kwh", rec.Metrics.SolarEnergyKWh).
		AddField("grid_import_kwh", rec.Metrics.GridImportKWh).
		AddField("grid_export_kwh", rec.Metrics.GridExportKWh).
		AddField("generator_energy_kwh", rec.Metrics.GeneratorEnergyKWh).
		AddField("cost_savings", rec.Metrics.CostSavings).
		AddField("final_soc", rec.FinalSoC).
		SetTime(rec.Date)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSlots writes one point per schedule slot.
func (s *InfluxSink) RecordSlots(microgridID string, slots []model.ScheduleTimeSlot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pts := make([]*write.Point, 0, len(slots))
	for _, slot := range slots {
		pts = append(pts, write.NewPointWithMeasurement("schedule_slot").
			AddTag("microgrid_id", microgridID).
			AddField("solar_kw", slot.SolarGenerationKW).
			AddField("load_kw", slot.TotalLoadKW).
			AddField("battery_charge_kw", slot.BatteryChargeKW).
			AddField("battery_discharge_kw", slot.BatteryDischargeKW).
			AddField("battery_soc", slot.BatterySoC).
			AddField("grid_import_kw", slot.GridImportKW).
			AddField("grid_export_kw", slot.GridExportKW).
			AddField("generator_kw", slot.GeneratorPowerKW).
			SetTime(slot.Time))
	}
	return s.writeAPI.WritePoint(ctx, pts...)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
