// Package telemetry holds the sampler's self-instrumentation counters.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "hostmon"

// Recorder counts sampling cycles and the failures recovered inside them.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	sourceErrors  *prometheus.CounterVec
	sinkErrors    *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its collectors on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed collect-and-emit cycles.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time spent collecting and emitting one snapshot.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		sourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_read_errors_total",
			Help:      "Counter source reads that failed and were skipped for a cycle.",
		}, []string{"source"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_write_errors_total",
			Help:      "Snapshots a sink failed to write.",
		}, []string{"sink"}),
	}

	for _, c := range []prometheus.Collector{r.cycles, r.cycleDuration, r.sourceErrors, r.sinkErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Cycle records one completed cycle that took d.
func (r *Recorder) Cycle(d time.Duration) {
	if r == nil {
		return
	}
	r.cycles.Inc()
	r.cycleDuration.Observe(d.Seconds())
}

// SourceError records a failed read of the named counter source.
func (r *Recorder) SourceError(source string) {
	if r == nil {
		return
	}
	r.sourceErrors.WithLabelValues(source).Inc()
}

// SinkError records a failed write to the named sink.
func (r *Recorder) SinkError(sink string) {
	if r == nil {
		return
	}
	r.sinkErrors.WithLabelValues(sink).Inc()
}

// Summary is a point-in-time view of the recorded totals.
type Summary struct {
	Cycles       uint64
	SourceErrors uint64
	SinkErrors   uint64
}

// Summary reads the current totals back out of the collectors.
func (r *Recorder) Summary() Summary {
	if r == nil {
		return Summary{}
	}
	return Summary{
		Cycles:       uint64(counterValue(r.cycles)),
		SourceErrors: uint64(vecTotal(r.sourceErrors)),
		SinkErrors:   uint64(vecTotal(r.sinkErrors)),
	}
}

func counterValue(c prometheus.Metric) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil || m.Counter == nil {
		return 0
	}
	return m.Counter.GetValue()
}

func vecTotal(v *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric)
	go func() {
		v.Collect(ch)
		close(ch)
	}()
	var total float64
	for m := range ch {
		total += counterValue(m)
	}
	return total
}
