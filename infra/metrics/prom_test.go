package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/microgrid/core/metrics"
	"github.com/kilianp07/microgrid/core/model"
)

func sampleRun() coremetrics.RunRecord {
	return coremetrics.RunRecord{
		MicrogridID: "mg-1",
		Date:        time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Mode:        model.ModeCost,
		Intervals:   144,
		Elapsed:     25 * time.Millisecond,
		FinalSoC:    0.8,
		Metrics: model.OptimizationMetrics{
			SolarEnergyKWh:      42,
			GridImportKWh:       3,
			GeneratorRuntimeMin: 30,
		},
	}
}

func TestPromSinkRecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRun(sampleRun()))
	require.NoError(t, sink.RecordRun(sampleRun()))

	assert.InDelta(t, 2, testutil.ToFloat64(sink.runs.WithLabelValues("mg-1", "cost")), 1e-9)
	assert.InDelta(t, 42, testutil.ToFloat64(sink.solarKWh.WithLabelValues("mg-1")), 1e-9)
	assert.InDelta(t, 3, testutil.ToFloat64(sink.importKWh.WithLabelValues("mg-1")), 1e-9)
	assert.InDelta(t, 30, testutil.ToFloat64(sink.genMin.WithLabelValues("mg-1")), 1e-9)
	assert.InDelta(t, 0.8, testutil.ToFloat64(sink.finalSoC.WithLabelValues("mg-1")), 1e-9)
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	// Registering the same metrics twice is tolerated.
	_, err = NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	assert.NoError(t, err)
}
