package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/microgrid/core/metrics"
)

// PromSink records scheduling runs in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	solarKWh  *prometheus.GaugeVec
	importKWh *prometheus.GaugeVec
	genMin    *prometheus.GaugeVec
	finalSoC  *prometheus.GaugeVec
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_runs_total",
			Help: "Total number of completed scheduling runs",
		}, []string{"microgrid_id", "mode"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schedule_run_duration_seconds",
			Help:    "Wall time of a scheduling run",
			Buckets: prometheus.DefBuckets,
		}, []string{"microgrid_id", "mode"}),
		solarKWh: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "schedule_solar_energy_kwh",
			Help: "Solar energy dispatched by the latest schedule",
		}, []string{"microgrid_id"}),
		importKWh: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "schedule_grid_import_kwh",
			Help: "Grid energy imported by the latest schedule",
		}, []string{"microgrid_id"}),
		genMin: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "schedule_generator_runtime_minutes",
			Help: "Generator runtime planned by the latest schedule",
		}, []string{"microgrid_id"}),
		finalSoC: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "schedule_final_battery_soc",
			Help: "Battery state of charge at the end of the latest schedule",
		}, []string{"microgrid_id"}),
	}
	for _, c := range []prometheus.Collector{s.runs, s.duration, s.solarKWh, s.importKWh, s.genMin, s.finalSoC} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// RecordRun implements the metrics Sink.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	mode := rec.Mode.String()
	s.runs.WithLabelValues(rec.MicrogridID, mode).Inc()
	s.duration.WithLabelValues(rec.MicrogridID, mode).Observe(rec.Elapsed.Seconds())
	s.solarKWh.WithLabelValues(rec.MicrogridID).Set(rec.Metrics.SolarEnergyKWh)
	s.importKWh.WithLabelValues(rec.MicrogridID).Set(rec.Metrics.GridImportKWh)
	s.genMin.WithLabelValues(rec.MicrogridID).Set(rec.Metrics.GeneratorRuntimeMin)
	s.finalSoC.WithLabelValues(rec.MicrogridID).Set(rec.FinalSoC)
	return nil
}
