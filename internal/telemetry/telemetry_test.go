package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CountsAndSummary(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.Cycle(2 * time.Millisecond)
	r.Cycle(3 * time.Millisecond)
	r.SourceError("stat")
	r.SinkError("file")
	r.SinkError("file")
	r.SinkError("console")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cycles))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.sinkErrors.WithLabelValues("file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sourceErrors.WithLabelValues("stat")))

	assert.Equal(t, Summary{Cycles: 2, SourceErrors: 1, SinkErrors: 3}, r.Summary())
}

func TestRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)
	assert.Error(t, err)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.Cycle(time.Second)
	r.SourceError("stat")
	r.SinkError("file")
	assert.Equal(t, Summary{}, r.Summary())
}
