package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	coremetrics "github.com/kilianp07/microgrid/core/metrics"
	"github.com/kilianp07/microgrid/core/model"
)

type fakeSink struct {
	runs  int
	slots int
	err   error
}

func (f *fakeSink) RecordRun(coremetrics.RunRecord) error {
	f.runs++
	return f.err
}

func (f *fakeSink) RecordSlots(string, []model.ScheduleTimeSlot) error {
	f.slots++
	return f.err
}

type runOnlySink struct{ runs int }

func (r *runOnlySink) RecordRun(coremetrics.RunRecord) error {
	r.runs++
	return nil
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &fakeSink{}, &fakeSink{}
	m := NewMultiSink(a, b)

	assert.NoError(t, m.RecordRun(sampleRun()))
	assert.Equal(t, 1, a.runs)
	assert.Equal(t, 1, b.runs)

	assert.NoError(t, m.RecordSlots("mg-1", nil))
	assert.Equal(t, 1, a.slots)
	assert.Equal(t, 1, b.slots)
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a, b := &fakeSink{err: boom}, &fakeSink{}
	m := NewMultiSink(a, b)

	err := m.RecordRun(sampleRun())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, b.runs, "healthy sink still records")
}

func TestMultiSinkSkipsNonSlotRecorders(t *testing.T) {
	a, b := &runOnlySink{}, &fakeSink{}
	m := NewMultiSink(a, b)

	assert.NoError(t, m.RecordSlots("mg-1", nil))
	assert.Equal(t, 1, b.slots)
	assert.Zero(t, a.runs)
}
