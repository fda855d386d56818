package metrics

import (
	"errors"

	coremetrics "github.com/kilianp07/microgrid/core/metrics"
	"github.com/kilianp07/microgrid/core/model"
)

// MultiSink fans records out to several sinks, joining their errors.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordRun implements the metrics Sink.
func (m *MultiSink) RecordRun(rec coremetrics.RunRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordRun(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordSlots forwards slots to every sink implementing SlotRecorder.
func (m *MultiSink) RecordSlots(microgridID string, slots []model.ScheduleTimeSlot) error {
	var errs []error
	for _, s := range m.sinks {
		if sr, ok := s.(coremetrics.SlotRecorder); ok {
			if err := sr.RecordSlots(microgridID, slots); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
