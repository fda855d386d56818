package planner

import (
	"fmt"
	"time"

	"github.com/kilianp07/microgrid/core/battery"
	"github.com/kilianp07/microgrid/core/model"
)

// Context carries everything a policy may inspect for one interval. All
// fields are read-only snapshots.
type Context struct {
	Index       int
	Time        time.Time
	Hour        int
	Interval    time.Duration
	SoC         float64
	SolarKW     float64 // available solar supply
	LoadKW      float64 // admitted load
	EssentialKW float64
	// ForecastAhead holds the remaining solar samples after this interval.
	ForecastAhead []float64
	// GeneratorOn reports whether the generator is currently running.
	GeneratorOn bool
	Battery     *battery.Model
	Config      model.SystemConfiguration
}

// NetKW returns the raw deficit (positive) or surplus (negative) before
// battery, generator and grid are invoked.
func (c Context) NetKW() float64 { return c.LoadKW - c.SolarKW }

// Action is a policy's battery and sourcing decision for one interval.
type Action struct {
	// BatteryKW is the requested bus power: positive charges, negative
	// discharges. The battery model clamps it to physical limits.
	BatteryKW float64
	// GeneratorBeforeGrid asks the planner to exhaust the generator before
	// importing from the grid.
	GeneratorBeforeGrid bool
	// AllowExport permits selling surplus this interval; the configuration
	// export flag still applies on top.
	AllowExport bool
}

// Policy decides the battery action for one interval. Implementations are
// stateless so concurrent runs can share them.
type Policy interface {
	Name() string
	Decide(ctx Context) Action
}

// ForMode returns the policy implementing the given optimization mode.
func ForMode(mode model.OptimizationMode) (Policy, error) {
	switch mode {
	case model.ModeCost:
		return CostPolicy{}, nil
	case model.ModeBatteryLongevity:
		return LongevityPolicy{}, nil
	case model.ModeGridIndependence:
		return IndependencePolicy{}, nil
	default:
		return nil, fmt.Errorf("no policy for mode %v", mode)
	}
}
