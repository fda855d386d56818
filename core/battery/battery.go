// Package battery simulates state-of-charge evolution of the microgrid
// battery under capacity, rate and SOC-bound limits. The round-trip loss is
// split symmetrically: each of the charge and discharge conversions applies
// sqrt(round_trip_efficiency).
package battery

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/microgrid/core/model"
)

// socEpsilon absorbs floating-point drift when checking SOC bounds.
const socEpsilon = 1e-9

// InvalidBatteryStateError signals an out-of-range starting SOC. This is a
// programmer or input error and is never recovered at runtime.
type InvalidBatteryStateError struct {
	SoC    float64
	MinSoC float64
	MaxSoC float64
}

func (e *InvalidBatteryStateError) Error() string {
	return fmt.Sprintf("battery soc %.6f outside [%.3f, %.3f]", e.SoC, e.MinSoC, e.MaxSoC)
}

// Model holds the battery parameters for one run. It carries no mutable
// state; the planner owns the running SOC.
type Model struct {
	capacityKWh    float64
	maxChargeKW    float64
	maxDischargeKW float64
	oneWayEff      float64
	minSoC         float64
	maxSoC         float64
}

// New builds a Model from the system configuration.
func New(cfg model.SystemConfiguration) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Model{
		capacityKWh:    cfg.BatteryCapacityKWh,
		maxChargeKW:    cfg.MaxChargeRateKW,
		maxDischargeKW: cfg.MaxDischargeRateKW,
		oneWayEff:      math.Sqrt(cfg.RoundTripEfficiency),
		minSoC:         cfg.MinSoC,
		maxSoC:         cfg.MaxSoC,
	}, nil
}

// Bounds returns the configured SOC limits.
func (m *Model) Bounds() (min, max float64) { return m.minSoC, m.maxSoC }

// MaxChargeKW returns the charge rate limit at the bus.
func (m *Model) MaxChargeKW() float64 { return m.maxChargeKW }

// MaxDischargeKW returns the discharge rate limit at the bus.
func (m *Model) MaxDischargeKW() float64 { return m.maxDischargeKW }

// Headroom returns how much bus power the battery can absorb for the given
// interval without leaving the SOC ceiling.
func (m *Model) Headroom(soc float64, interval time.Duration) float64 {
	h := interval.Hours()
	if h <= 0 {
		return 0
	}
	room := (m.maxSoC - soc) * m.capacityKWh / (m.oneWayEff * h)
	return math.Max(0, math.Min(m.maxChargeKW, room))
}

// Available returns how much bus power the battery can deliver for the
// given interval without breaching the SOC floor.
func (m *Model) Available(soc float64, interval time.Duration) float64 {
	h := interval.Hours()
	if h <= 0 {
		return 0
	}
	avail := (soc - m.minSoC) * m.capacityKWh * m.oneWayEff / h
	return math.Max(0, math.Min(m.maxDischargeKW, avail))
}

// Transfer is the outcome of applying one interval's battery request.
// ChargeKW and DischargeKW are mutually exclusive bus-side powers.
type Transfer struct {
	ChargeKW    float64
	DischargeKW float64
	SoC         float64
	// ShortfallKW is the part of the request the battery could not honor;
	// the planner must source or sink it elsewhere.
	ShortfallKW float64
}

// Apply clamps the requested bus power (positive = charge, negative =
// discharge) to the rate and SOC limits and returns the resulting state.
func (m *Model) Apply(soc, requestKW float64, interval time.Duration) (Transfer, error) {
	if soc < m.minSoC-socEpsilon || soc > m.maxSoC+socEpsilon {
		return Transfer{}, &InvalidBatteryStateError{SoC: soc, MinSoC: m.minSoC, MaxSoC: m.maxSoC}
	}
	soc = math.Min(math.Max(soc, m.minSoC), m.maxSoC)
	h := interval.Hours()
	out := Transfer{SoC: soc}
	switch {
	case requestKW > 0:
		p := math.Min(requestKW, m.Headroom(soc, interval))
		out.ChargeKW = p
		out.SoC = soc + p*m.oneWayEff*h/m.capacityKWh
		out.ShortfallKW = requestKW - p
	case requestKW < 0:
		p := math.Min(-requestKW, m.Available(soc, interval))
		out.DischargeKW = p
		out.SoC = soc - p/m.oneWayEff*h/m.capacityKWh
		out.ShortfallKW = -requestKW - p
	}
	if out.SoC > m.maxSoC {
		out.SoC = m.maxSoC
	}
	if out.SoC < m.minSoC {
		out.SoC = m.minSoC
	}
	return out, nil
}
