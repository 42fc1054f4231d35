package metrics

import "strconv"

// Entity identifies one tracked CPU counter line: the aggregate "cpu" line
// or a single core.
type Entity struct {
	aggregate bool
	core      int
}

// Aggregate is the whole-system CPU entity.
var Aggregate = Entity{aggregate: true}

// Core returns the entity for core id.
func Core(id int) Entity {
	return Entity{core: id}
}

// String returns the /proc/stat label of the entity ("cpu" or "cpuN").
func (e Entity) String() string {
	if e.aggregate {
		return "cpu"
	}
	return "cpu" + strconv.Itoa(e.core)
}

// SamplePoint is a cumulative jiffy reading for one entity.
type SamplePoint struct {
	Total   uint64
	NonIdle uint64
}

// DeltaTracker converts successive cumulative samples into utilization
// percentages. It is not safe for concurrent use; the owning Collector is
// only ever driven by a single worker.
type DeltaTracker struct {
	prev map[Entity]SamplePoint
}

// NewDeltaTracker returns an empty tracker.
func NewDeltaTracker() *DeltaTracker {
	return &DeltaTracker{prev: make(map[Entity]SamplePoint)}
}

// Observe records a sample for e and returns the utilization since the
// previous sample of the same entity. The boolean is false on the first
// observation of e. A total that did not advance yields exactly 0.
func (t *DeltaTracker) Observe(e Entity, total, nonIdle uint64) (float64, bool) {
	prev, seen := t.prev[e]
	t.prev[e] = SamplePoint{Total: total, NonIdle: nonIdle}
	if !seen {
		return 0, false
	}

	if total <= prev.Total {
		return 0, true
	}
	if nonIdle <= prev.NonIdle {
		return 0, true
	}

	totalDiff := total - prev.Total
	nonIdleDiff := nonIdle - prev.NonIdle
	if nonIdleDiff >= totalDiff {
		return 100, true
	}
	return 100 * float64(nonIdleDiff) / float64(totalDiff), true
}

// Last returns the most recent sample stored for e.
func (t *DeltaTracker) Last(e Entity) (SamplePoint, bool) {
	p, ok := t.prev[e]
	return p, ok
}
