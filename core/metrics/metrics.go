// Package metrics defines the observability interfaces the service records
// scheduling runs through. Implementations live under infra/metrics.
package metrics

import (
	"time"

	"github.com/kilianp07/microgrid/core/model"
)

// RunRecord summarizes one completed scheduling run.
type RunRecord struct {
	MicrogridID string
	Date        time.Time
	Mode        model.OptimizationMode
	Intervals   int
	Elapsed     time.Duration
	FinalSoC    float64
	Metrics     model.OptimizationMetrics
}

// Sink records completed runs for observability purposes.
type Sink interface {
	RecordRun(rec RunRecord) error
}

// SlotRecorder is implemented by sinks that additionally store the full
// slot sequence, such as time-series databases.
type SlotRecorder interface {
	RecordSlots(microgridID string, slots []model.ScheduleTimeSlot) error
}

// NopSink discards everything.
type NopSink struct{}

// RecordRun implements Sink.
func (NopSink) RecordRun(RunRecord) error { return nil }

// Config selects and parameterizes the metric sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
