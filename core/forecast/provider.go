package forecast

import (
	"context"
	"time"

	"github.com/kilianp07/microgrid/core/model"
)

// Provider yields the probabilistic solar forecast for a microgrid. The
// surrounding system implements it against a remote forecasting service;
// the scheduler only consumes the normalized points.
type Provider interface {
	// Points returns forecast points covering the given day.
	Points(ctx context.Context, microgridID string, day time.Time) ([]model.ForecastPoint, error)
}

// StaticProvider serves a fixed point set, useful for tests and one-shot
// CLI runs against a forecast file.
type StaticProvider struct {
	ForecastPoints []model.ForecastPoint
}

// Points implements Provider.
func (p StaticProvider) Points(context.Context, string, time.Time) ([]model.ForecastPoint, error) {
	return p.ForecastPoints, nil
}
