// Package monitor drives the sampling loop: collect, emit, sleep, repeat.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HerbHall/hostmon/internal/metrics"
	"github.com/HerbHall/hostmon/internal/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lifecycle errors.
var (
	ErrInvalidPeriod  = errors.New("monitor: period must be positive")
	ErrAlreadyRunning = errors.New("monitor: already running")
	ErrStopped        = errors.New("monitor: stopped monitors cannot be restarted")
)

// State is the monitor lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Collector produces one snapshot per call.
type Collector interface {
	Collect(req metrics.Request) metrics.Snapshot
}

// Emitter consumes snapshots.
type Emitter interface {
	Emit(snap metrics.Snapshot) error
}

// Options configures a Monitor.
type Options struct {
	// Period is the pause after each cycle before the next one starts.
	Period time.Duration
	// Request selects what every cycle collects.
	Request metrics.Request
	// Recorder counts cycles. Optional.
	Recorder *telemetry.Recorder
}

// Monitor runs collect-then-emit cycles on a single worker goroutine.
// A Monitor moves Idle -> Running -> Stopped once; a stopped Monitor
// cannot be restarted.
type Monitor struct {
	collector Collector
	emitter   Emitter
	opts      Options
	logger    *zap.Logger
	runID     string

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an idle Monitor.
func New(collector Collector, emitter Emitter, opts Options, logger *zap.Logger) (*Monitor, error) {
	if opts.Period <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidPeriod, opts.Period)
	}
	runID := uuid.NewString()
	return &Monitor{
		collector: collector,
		emitter:   emitter,
		opts:      opts,
		logger:    logger.With(zap.String("run_id", runID)),
		runID:     runID,
	}, nil
}

// RunID identifies this monitor instance in logs.
func (m *Monitor) RunID() string { return m.runID }

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start launches the worker. Cancelling ctx has the same effect on the
// worker as Stop, but the monitor only becomes Stopped through Stop.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateRunning:
		return ErrAlreadyRunning
	case StateStopped:
		return ErrStopped
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.state = StateRunning

	m.logger.Info("monitor starting",
		zap.Duration("period", m.opts.Period),
		zap.Bool("cpu", m.opts.Request.CPU),
		zap.Ints("cores", m.opts.Request.Cores),
		zap.Bool("memory", m.opts.Request.Memory),
		zap.Strings("memory_specs", m.opts.Request.MemSpecs),
	)

	go m.run(ctx, m.done)
	return nil
}

// Stop signals the worker and blocks until it has exited. A cycle in
// progress always completes first. Stop on an idle monitor does nothing;
// repeated calls are safe.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.state == StateIdle {
		m.mu.Unlock()
		return
	}
	if m.state == StateRunning {
		m.state = StateStopped
		m.cancel()
	}
	done := m.done
	m.mu.Unlock()

	<-done
}

// Done is closed when the worker exits. It is nil before Start.
func (m *Monitor) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

func (m *Monitor) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	for {
		m.cycle()

		timer := time.NewTimer(m.opts.Period)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.logger.Info("monitor shutting down")
			return
		case <-timer.C:
		}
	}
}

// cycle runs one collect-then-emit pass. A panic inside the collector or a
// sink is logged and the loop carries on.
func (m *Monitor) cycle() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("sampling cycle panicked", zap.Any("panic", r))
		}
	}()

	start := time.Now()
	snap := m.collector.Collect(m.opts.Request)
	if err := m.emitter.Emit(snap); err != nil {
		m.logger.Debug("cycle finished with sink errors", zap.Error(err))
	}
	took := time.Since(start)
	m.opts.Recorder.Cycle(took)

	m.logger.Debug("cycle complete",
		zap.String("timestamp", snap.Timestamp),
		zap.Duration("took", took),
	)
}
