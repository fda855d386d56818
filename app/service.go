// Package app wires configuration, stores, sinks and the planner into the
// scheduling service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/microgrid/api/schedules"
	"github.com/kilianp07/microgrid/config"
	"github.com/kilianp07/microgrid/core/forecast"
	coremetrics "github.com/kilianp07/microgrid/core/metrics"
	"github.com/kilianp07/microgrid/core/model"
	"github.com/kilianp07/microgrid/core/planner"
	corestore "github.com/kilianp07/microgrid/core/store"
	"github.com/kilianp07/microgrid/infra/logger"
	"github.com/kilianp07/microgrid/infra/metrics"
	"github.com/kilianp07/microgrid/infra/mqtt"
	sqlitestore "github.com/kilianp07/microgrid/infra/store"
	"github.com/kilianp07/microgrid/internal/eventbus"
)

// Service orchestrates schedule generation, persistence and announcement.
type Service struct {
	// Forecast supplies solar forecast points when a request carries none.
	Forecast forecast.Provider

	cfg       *config.Config
	log       logger.Logger
	planner   *planner.Planner
	store     corestore.ScheduleStore
	sink      coremetrics.Sink
	announcer *mqtt.Announcer
	bus       *eventbus.Bus
	collector *metrics.Collector

	mu    sync.Mutex
	gates map[string]*sync.Mutex
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	var st corestore.ScheduleStore
	switch cfg.Store.Backend {
	case "sqlite":
		s, err := sqlitestore.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("schedule store: %w", err)
		}
		st = s
	default:
		st = corestore.NewMemoryStore()
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	var announcer *mqtt.Announcer
	if cfg.MQTT.Enabled {
		a, err := mqtt.NewAnnouncer(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt announcer: %w", err)
		}
		announcer = a
	}

	bus := eventbus.New()
	collector := metrics.StartCollector(bus, logger.New("events"))
	pl := planner.New(logger.New("planner"))
	pl.Bus = bus
	band, err := cfg.Scheduler.Band()
	if err != nil {
		return nil, err
	}
	pl.Sampler = forecast.Sampler{MaxGap: cfg.Scheduler.MaxGap(), Band: band}

	return &Service{
		cfg:       cfg,
		log:       log,
		planner:   pl,
		store:     st,
		sink:      sink,
		announcer: announcer,
		bus:       bus,
		collector: collector,
		gates:     make(map[string]*sync.Mutex),
	}, nil
}

// GenerateRequest parameterizes one scheduling run.
type GenerateRequest struct {
	Date time.Time
	// Points holds the solar forecast; when empty the service queries its
	// Forecast provider instead.
	Points []model.ForecastPoint
	// ModeOverride replaces the configured optimization mode when set.
	ModeOverride *model.OptimizationMode
}

// Generate runs the planner for the configured microgrid and persists the
// result. Concurrent requests for the same date serialize here; the core
// itself is reentrant. An essential-load shortfall is logged as critical
// and returned alongside the persisted schedule.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*model.Schedule, error) {
	gate := s.gate(s.cfg.MicrogridID, req.Date)
	gate.Lock()
	defer gate.Unlock()

	points := req.Points
	if len(points) == 0 {
		if s.Forecast == nil {
			return nil, fmt.Errorf("no forecast points and no forecast provider configured")
		}
		var err error
		points, err = s.Forecast.Points(ctx, s.cfg.MicrogridID, req.Date)
		if err != nil {
			return nil, fmt.Errorf("fetch forecast: %w", err)
		}
	}

	sysCfg, err := s.cfg.System.ToModel()
	if err != nil {
		return nil, err
	}
	if req.ModeOverride != nil {
		sysCfg.Mode = *req.ModeOverride
	}
	devices, err := s.cfg.DeviceList()
	if err != nil {
		return nil, err
	}
	started := time.Now()
	sched, genErr := s.planner.GenerateSchedule(
		points, devices, sysCfg,
		s.cfg.Scheduler.Horizon(), req.Date, s.cfg.Scheduler.Interval(),
	)
	if sched == nil {
		return nil, genErr
	}
	var unservable *planner.UnservableLoadError
	if genErr != nil && !errors.As(genErr, &unservable) {
		return nil, genErr
	}
	if unservable != nil {
		s.log.Errorf("critical: %v", genErr)
	}
	sched.MicrogridID = s.cfg.MicrogridID

	saved, err := s.store.Save(ctx, sched)
	if err != nil {
		return nil, fmt.Errorf("persist schedule: %w", err)
	}

	rec := coremetrics.RunRecord{
		MicrogridID: saved.MicrogridID,
		Date:        saved.Date,
		Mode:        saved.Mode,
		Intervals:   len(saved.Slots),
		Elapsed:     time.Since(started),
		FinalSoC:    saved.FinalSoC,
		Metrics:     saved.Metrics,
	}
	if err := s.sink.RecordRun(rec); err != nil {
		s.log.Warnf("record run: %v", err)
	}
	if sr, ok := s.sink.(coremetrics.SlotRecorder); ok {
		if err := sr.RecordSlots(saved.MicrogridID, saved.Slots); err != nil {
			s.log.Warnf("record slots: %v", err)
		}
	}
	if s.announcer != nil {
		if err := s.announcer.AnnounceSchedule(saved); err != nil {
			s.log.Warnf("announce schedule: %v", err)
		}
	}
	return saved, genErr
}

// gate returns the per microgrid-date mutex, creating it on first use.
func (s *Service) gate(microgridID string, date time.Time) *sync.Mutex {
	key := microgridID + "|" + corestore.DateKey(date)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[key]
	if !ok {
		g = &sync.Mutex{}
		s.gates[key] = g
	}
	return g
}

// Store exposes the schedule store for read-only collaborators.
func (s *Service) Store() corestore.ScheduleStore { return s.store }

// Run starts the metric and API servers and blocks until the context is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.API.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/api/schedules", schedules.NewHandler(s.store))
		srv := &http.Server{Addr: s.cfg.API.Addr, Handler: mux}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.announcer != nil {
		s.announcer.Close()
	}
	s.collector.Close()
	s.bus.Close()
	return s.store.Close()
}
