package model

import "time"

// ForecastPoint is one sample of the probabilistic solar forecast.
// PowerKW is the expected (p50) output; the percentile band is optional.
type ForecastPoint struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	PowerKW   float64   `json:"power_kw" yaml:"power_kw"`
	P10KW     *float64  `json:"p10_kw,omitempty" yaml:"p10_kw,omitempty"`
	P90KW     *float64  `json:"p90_kw,omitempty" yaml:"p90_kw,omitempty"`
}

// Percentile returns the requested band value, falling back to the expected
// power when the band is absent.
func (p ForecastPoint) Percentile(band ForecastBand) float64 {
	switch band {
	case BandP10:
		if p.P10KW != nil {
			return *p.P10KW
		}
	case BandP90:
		if p.P90KW != nil {
			return *p.P90KW
		}
	}
	return p.PowerKW
}

// ForecastBand selects which percentile of the forecast distribution to use.
type ForecastBand int

const (
	BandP50 ForecastBand = iota
	BandP10
	BandP90
)

// String returns a human-readable representation of the band.
func (b ForecastBand) String() string {
	switch b {
	case BandP10:
		return "p10"
	case BandP90:
		return "p90"
	default:
		return "p50"
	}
}
