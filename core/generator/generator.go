// Package generator controls the backup generator. Once started, the
// generator stays on until its minimum runtime has elapsed and the current
// deficit is zero, to avoid short-cycling.
package generator

import (
	"time"

	"github.com/kilianp07/microgrid/core/model"
)

// State enumerates the controller states.
type State int

const (
	// StateOff means the generator is stopped.
	StateOff State = iota
	// StateRunning means the generator is on with its minimum runtime not
	// yet satisfied.
	StateRunning
	// StateCooldown means the minimum runtime is satisfied; the generator
	// keeps covering deficit and stops as soon as none remains.
	StateCooldown
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCooldown:
		return "cooldown"
	default:
		return "off"
	}
}

// idleFloorFraction is the minimum stable load while the generator is held
// on by the runtime constraint with no deficit to cover.
const idleFloorFraction = 0.1

// Output is the generator contribution for one interval.
type Output struct {
	PowerKW    float64
	FuelLiters float64
	FuelCost   float64
	State      State
}

// Controller is the generator state machine for one run.
type Controller struct {
	maxPowerKW   float64
	minRuntime   time.Duration
	fuelLPerKWh  float64
	fuelCostPerL float64

	state   State
	runtime time.Duration
	total   time.Duration
}

// New builds a Controller from the system configuration.
func New(cfg model.SystemConfiguration) *Controller {
	return &Controller{
		maxPowerKW:   cfg.GeneratorMaxPowerKW,
		minRuntime:   time.Duration(cfg.GeneratorMinRuntimeMinutes) * time.Minute,
		fuelLPerKWh:  cfg.GeneratorFuelLPerKWh,
		fuelCostPerL: cfg.GeneratorFuelCostPerL,
	}
}

// State returns the current controller state.
func (c *Controller) State() State { return c.state }

// Running reports whether the generator is on.
func (c *Controller) Running() bool { return c.state != StateOff }

// MinRuntimeMet reports whether the hysteresis window has elapsed.
func (c *Controller) MinRuntimeMet() bool { return c.runtime >= c.minRuntime }

// MaxPowerKW returns the dispatch ceiling.
func (c *Controller) MaxPowerKW() float64 { return c.maxPowerKW }

// IdleFloorKW is the minimum output the planner should request while the
// generator is held on without deficit.
func (c *Controller) IdleFloorKW() float64 { return c.maxPowerKW * idleFloorFraction }

// RuntimeMinutes returns the cumulative on-time for the whole run.
func (c *Controller) RuntimeMinutes() float64 { return c.total.Minutes() }

// Step advances the state machine by one interval. requestKW is the power
// the planner wants from the generator; it is clamped to the maximum
// rating. A positive request starts a stopped generator; a zero request
// stops it only once the minimum runtime has elapsed.
func (c *Controller) Step(requestKW float64, interval time.Duration) Output {
	if requestKW < 0 {
		requestKW = 0
	}
	if requestKW > c.maxPowerKW {
		requestKW = c.maxPowerKW
	}
	if c.maxPowerKW <= 0 {
		return Output{State: StateOff}
	}

	switch c.state {
	case StateOff:
		if requestKW <= 0 {
			return Output{State: StateOff}
		}
		c.state = StateRunning
		c.runtime = 0
	case StateRunning, StateCooldown:
		if requestKW <= 0 && c.MinRuntimeMet() {
			c.state = StateOff
			c.runtime = 0
			return Output{State: StateOff}
		}
	}

	c.runtime += interval
	c.total += interval
	if c.MinRuntimeMet() {
		c.state = StateCooldown
	} else {
		c.state = StateRunning
	}

	energyKWh := requestKW * interval.Hours()
	fuel := energyKWh * c.fuelLPerKWh
	return Output{
		PowerKW:    requestKW,
		FuelLiters: fuel,
		FuelCost:   fuel * c.fuelCostPerL,
		State:      c.state,
	}
}
