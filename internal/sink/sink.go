// Package sink renders snapshots to their configured destinations.
package sink

import (
	"errors"
	"fmt"
	"time"

	"github.com/HerbHall/hostmon/internal/metrics"
	"github.com/HerbHall/hostmon/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sink renders one snapshot to a destination.
type Sink interface {
	// Name identifies the sink in logs and telemetry (e.g., "console", "file:/var/log/m.csv").
	Name() string
	// Emit writes the snapshot. A failure affects this snapshot only.
	Emit(snap metrics.Snapshot) error
}

// errorLogInterval bounds how often a persistently failing sink is logged.
const errorLogInterval = time.Minute

// Router fans a snapshot out to every sink in order.
type Router struct {
	sinks  []routedSink
	logger *zap.Logger
	rec    *telemetry.Recorder
}

type routedSink struct {
	Sink
	logEvery *rate.Sometimes
}

// NewRouter returns a Router over sinks. rec may be nil.
func NewRouter(sinks []Sink, logger *zap.Logger, rec *telemetry.Recorder) *Router {
	r := &Router{logger: logger, rec: rec}
	for _, s := range sinks {
		r.sinks = append(r.sinks, routedSink{
			Sink:     s,
			logEvery: &rate.Sometimes{First: 1, Interval: errorLogInterval},
		})
	}
	return r
}

// Len returns the number of sinks.
func (r *Router) Len() int { return len(r.sinks) }

// Emit writes snap to every sink. A failing sink does not stop the others;
// the returned error joins every failure of this call.
func (r *Router) Emit(snap metrics.Snapshot) error {
	var errs []error
	for _, s := range r.sinks {
		err := s.Emit(snap)
		if err == nil {
			continue
		}
		errs = append(errs, fmt.Errorf("sink %s: %w", s.Name(), err))
		r.rec.SinkError(s.Name())
		s.logEvery.Do(func() {
			r.logger.Error("sink write failed",
				zap.String("sink", s.Name()),
				zap.String("timestamp", snap.Timestamp),
				zap.Error(err),
			)
		})
	}
	return errors.Join(errs...)
}
