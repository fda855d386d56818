// Package admission decides which devices run in a given interval and at
// what power. Essential devices are always served; flexible and optional
// devices are admitted in priority order while the cumulative demand fits
// the safety-margin-scaled supply.
package admission

import (
	"sort"

	"github.com/kilianp07/microgrid/core/model"
)

// Request describes one interval's admission inputs.
type Request struct {
	// AvailableKW is the supply considered free for this interval, before
	// battery, generator or grid are invoked.
	AvailableKW float64
	// SafetyMargin is the fraction of supply reserved for critical loads.
	SafetyMargin float64
	// Hour is the interval's hour of day, used for preferred windows.
	Hour int
	// RuntimeToday maps device ID to minutes already run today, used for
	// minimum-runtime force admission.
	RuntimeToday map[string]float64
}

// Grant is the admission decision for one device.
type Grant struct {
	Device  model.Device
	PowerKW float64
	// Deferred marks a device skipped because the interval is outside its
	// preferred window. Its demand is deferred, not dropped.
	Deferred bool
}

// Result aggregates one interval's admission decisions.
type Result struct {
	Grants []Grant
	// EssentialKW is demand that must be served from any source.
	EssentialKW float64
	// DiscretionaryKW is admitted flexible/optional demand.
	DiscretionaryKW float64
	// DeferredKW is demand pushed to a later interval by window checks.
	DeferredKW float64
}

// TotalKW returns the admitted load for the interval.
func (r Result) TotalKW() float64 { return r.EssentialKW + r.DiscretionaryKW }

// Admit evaluates the device list for one interval. Ordering is
// deterministic: essential before flexible before optional, then ascending
// priority, then device ID.
func Admit(devices []model.Device, req Request) Result {
	ordered := make([]model.Device, 0, len(devices))
	for _, d := range devices {
		if d.Active {
			ordered = append(ordered, d)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.ID < b.ID
	})

	budget := req.AvailableKW * (1 - req.SafetyMargin)
	var res Result
	cumulative := 0.0
	for _, d := range ordered {
		draw := d.RatedPowerKW()
		if d.Type == model.DeviceEssential {
			res.Grants = append(res.Grants, Grant{Device: d, PowerKW: draw})
			res.EssentialKW += draw
			cumulative += draw
			continue
		}
		if d.Window != nil && !d.Window.Contains(req.Hour) && !needsRuntime(d, req.RuntimeToday) {
			res.Grants = append(res.Grants, Grant{Device: d, Deferred: true})
			res.DeferredKW += draw
			continue
		}
		if cumulative+draw > budget {
			res.Grants = append(res.Grants, Grant{Device: d})
			continue
		}
		res.Grants = append(res.Grants, Grant{Device: d, PowerKW: draw})
		res.DiscretionaryKW += draw
		cumulative += draw
	}
	return res
}

// needsRuntime reports whether the device must be force-admitted because it
// has not yet met its daily minimum runtime.
func needsRuntime(d model.Device, runtime map[string]float64) bool {
	if d.MinRuntimeMinutes <= 0 {
		return false
	}
	return runtime[d.ID] < float64(d.MinRuntimeMinutes)
}
