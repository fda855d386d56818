// Package events defines the typed events published on the bus during a
// scheduling run. Observers such as metric sinks and announcers subscribe
// without coupling the planner to infrastructure.
package events

import (
	"time"

	"github.com/kilianp07/microgrid/core/model"
)

// RunStartedEvent is published when a scheduling run begins.
type RunStartedEvent struct {
	MicrogridID string
	Date        time.Time
	Mode        model.OptimizationMode
	Intervals   int
}

// RunCompletedEvent is published when a run finishes successfully.
type RunCompletedEvent struct {
	MicrogridID string
	Schedule    *model.Schedule
	Elapsed     time.Duration
}

// GeneratorTransitionEvent is published when the generator changes state.
type GeneratorTransitionEvent struct {
	Interval int
	Time     time.Time
	From     string
	To       string
}

// ShortfallEvent is published when essential demand goes unserved.
type ShortfallEvent struct {
	Interval  int
	Time      time.Time
	DeficitKW float64
}
