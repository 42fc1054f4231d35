// Package metrics samples host CPU and memory counters and converts them
// into per-cycle snapshots.
package metrics

import (
	"time"

	"github.com/HerbHall/hostmon/internal/telemetry"
	"go.uber.org/zap"
)

// Source names used in logs and telemetry.
const (
	sourceStat    = "stat"
	sourceMeminfo = "meminfo"
)

// Collector runs sampling passes. It owns the DeltaTracker, so a Collector
// must only be driven from one goroutine at a time.
type Collector struct {
	source  CounterSource
	tracker *DeltaTracker
	logger  *zap.Logger
	rec     *telemetry.Recorder
	now     func() time.Time
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// WithRecorder counts source read failures on rec.
func WithRecorder(rec *telemetry.Recorder) Option {
	return func(c *Collector) { c.rec = rec }
}

// NewCollector returns a Collector reading from source.
func NewCollector(source CounterSource, logger *zap.Logger, opts ...Option) *Collector {
	c := &Collector{
		source:  source,
		tracker: NewDeltaTracker(),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect performs one sampling pass. It never fails: unreadable sources
// and malformed lines leave the affected values out of the snapshot.
func (c *Collector) Collect(req Request) Snapshot {
	now := c.now()
	snap := Snapshot{
		Timestamp: now.Local().Format(TimestampLayout),
		Time:      now,
	}

	if req.CPU {
		snap.CPU = c.collectCPU(req.Cores)
	}
	if req.Memory {
		snap.Memory = c.collectMemory(req.MemSpecs)
	}
	return snap
}

func (c *Collector) collectCPU(cores []int) *CPUStats {
	stats := &CPUStats{Cores: make(map[int]float64)}

	lines, err := c.source.StatLines()
	if err != nil {
		c.logger.Warn("cpu counters unavailable this cycle", zap.Error(err))
		c.rec.SourceError(sourceStat)
		return stats
	}

	if line, ok := findCPULine(lines, Aggregate.String()); ok {
		if pct, ok := c.observe(Aggregate, line); ok {
			stats.Total = &pct
		}
	} else {
		c.logger.Debug("aggregate cpu line missing")
	}

	for _, id := range cores {
		if id < 0 {
			continue
		}
		e := Core(id)
		line, ok := findCPULine(lines, e.String())
		if !ok {
			c.logger.Debug("requested core not present", zap.Int("core", id))
			continue
		}
		if pct, ok := c.observe(e, line); ok {
			stats.Cores[id] = pct
		}
	}
	return stats
}

// observe parses line and feeds it to the tracker under e.
func (c *Collector) observe(e Entity, line string) (float64, bool) {
	_, p, ok := parseCPULine(line)
	if !ok {
		c.logger.Debug("skipping malformed cpu line",
			zap.Stringer("entity", e),
			zap.String("line", line),
		)
		return 0, false
	}
	return c.tracker.Observe(e, p.Total, p.NonIdle)
}

func (c *Collector) collectMemory(specs []string) map[string]uint64 {
	out := make(map[string]uint64, len(specs))

	lines, err := c.source.MeminfoLines()
	if err != nil {
		c.logger.Warn("memory counters unavailable this cycle", zap.Error(err))
		c.rec.SourceError(sourceMeminfo)
		return out
	}

	values := parseMeminfo(lines)
	for _, spec := range specs {
		if v, ok := memoryValue(values, spec); ok {
			out[spec] = v
		}
	}
	return out
}

// memoryValue resolves spec against parsed meminfo values. used is
// omitted when MemFree exceeds MemTotal.
func memoryValue(values map[string]uint64, spec string) (uint64, bool) {
	if spec == MemUsed {
		total, okTotal := values["MemTotal"]
		free, okFree := values["MemFree"]
		if !okTotal || !okFree || free > total {
			return 0, false
		}
		return total - free, true
	}

	key, ok := memPassThrough[spec]
	if !ok {
		return 0, false
	}
	v, ok := values[key]
	return v, ok
}
