package forecast

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/interp"

	"github.com/kilianp07/microgrid/core/model"
)

// DefaultMaxGap is the largest distance between an interval and the nearest
// forecast point before sampling fails.
const DefaultMaxGap = 3 * time.Hour

// ForecastGapError reports an interval with no forecast point within the
// configured maximum gap. The scheduler never invents forecast data; the
// caller decides whether to abort or substitute a fallback curve.
type ForecastGapError struct {
	Interval int
	Time     time.Time
	MaxGap   time.Duration
}

func (e *ForecastGapError) Error() string {
	return fmt.Sprintf("no forecast point within %s of interval %d (%s)",
		e.MaxGap, e.Interval, e.Time.Format(time.RFC3339))
}

// Sampler converts probabilistic forecast points into deterministic
// per-interval solar estimates at the scheduler's resolution.
type Sampler struct {
	// MaxGap bounds the distance to the nearest forecast point.
	// Zero means DefaultMaxGap.
	MaxGap time.Duration
	// Band selects the percentile used; defaults to the median.
	Band model.ForecastBand
}

// Sample returns n solar power values (kW), one per interval starting at
// start. Points may be non-uniform; values are linearly interpolated in
// time, clamped to zero outside forecast coverage and below zero.
func (s Sampler) Sample(points []model.ForecastPoint, start time.Time, interval time.Duration, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("interval count must be positive, got %d", n)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval length must be positive, got %s", interval)
	}
	maxGap := s.MaxGap
	if maxGap == 0 {
		maxGap = DefaultMaxGap
	}

	pts := normalize(points, s.Band)
	if len(pts) == 0 {
		return nil, &ForecastGapError{Interval: 0, Time: start, MaxGap: maxGap}
	}

	var pl interp.PiecewiseLinear
	if len(pts) > 1 {
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		for i, p := range pts {
			xs[i] = p.t.Sub(pts[0].t).Seconds()
			ys[i] = p.kw
		}
		if err := pl.Fit(xs, ys); err != nil {
			return nil, fmt.Errorf("fit forecast curve: %w", err)
		}
	}

	first, last := pts[0].t, pts[len(pts)-1].t
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		t := start.Add(time.Duration(i) * interval)
		if gap := nearestGap(pts, t); gap > maxGap {
			return nil, &ForecastGapError{Interval: i, Time: t, MaxGap: maxGap}
		}
		var v float64
		switch {
		case t.Before(first) || t.After(last):
			// Outside coverage: physical floor, not extrapolation.
			v = 0
		case len(pts) == 1:
			v = pts[0].kw
		default:
			v = pl.Predict(t.Sub(first).Seconds())
		}
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out, nil
}

type samplePoint struct {
	t  time.Time
	kw float64
}

// normalize sorts points chronologically, resolves the percentile band and
// drops duplicate timestamps (last one wins).
func normalize(points []model.ForecastPoint, band model.ForecastBand) []samplePoint {
	pts := make([]samplePoint, 0, len(points))
	for _, p := range points {
		pts = append(pts, samplePoint{t: p.Timestamp, kw: p.Percentile(band)})
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].t.Before(pts[j].t) })
	dedup := pts[:0]
	for _, p := range pts {
		if len(dedup) > 0 && dedup[len(dedup)-1].t.Equal(p.t) {
			dedup[len(dedup)-1] = p
			continue
		}
		dedup = append(dedup, p)
	}
	return dedup
}

// nearestGap returns the distance from t to the closest forecast point.
func nearestGap(pts []samplePoint, t time.Time) time.Duration {
	i := sort.Search(len(pts), func(i int) bool { return !pts[i].t.Before(t) })
	best := time.Duration(1<<63 - 1)
	if i < len(pts) {
		best = pts[i].t.Sub(t)
	}
	if i > 0 {
		if d := t.Sub(pts[i-1].t); d < best {
			best = d
		}
	}
	return best
}
