package metrics

import (
	"sort"
	"time"
)

// TimestampLayout is the day-first local time format stamped on snapshots.
const TimestampLayout = "02-01-2006 15:04:05"

// Snapshot is the result of one sampling pass.
type Snapshot struct {
	Timestamp string
	Time      time.Time

	// CPU is nil when no cpu metric was requested.
	CPU *CPUStats
	// Memory maps spec name to kilobytes. Nil when no memory metric was requested.
	Memory map[string]uint64
}

// CPUStats holds utilization percentages available this cycle.
type CPUStats struct {
	Total *float64
	Cores map[int]float64
}

// CoreIDs returns the ids present in Cores in ascending order.
func (c *CPUStats) CoreIDs() []int {
	if c == nil {
		return nil
	}
	ids := make([]int, 0, len(c.Cores))
	for id := range c.Cores {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// MemoryKeys returns the memory spec names present in s, sorted.
func (s Snapshot) MemoryKeys() []string {
	keys := make([]string, 0, len(s.Memory))
	for k := range s.Memory {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Request is the typed set of metrics one pass should gather.
type Request struct {
	CPU      bool
	Cores    []int
	Memory   bool
	MemSpecs []string
}

// Memory spec names understood by the collector.
const (
	MemUsed      = "used"
	MemFree      = "free"
	MemAvailable = "available"
	MemCached    = "cached"
	MemBuffers   = "buffers"
)

// KnownMemSpecs lists the memory specs in their canonical order.
var KnownMemSpecs = []string{MemUsed, MemFree, MemAvailable, MemCached, MemBuffers}

// memPassThrough maps pass-through specs to their meminfo key.
var memPassThrough = map[string]string{
	MemFree:      "MemFree",
	MemAvailable: "MemAvailable",
	MemCached:    "Cached",
	MemBuffers:   "Buffers",
}

// IsMemSpec reports whether spec is a recognised memory spec.
func IsMemSpec(spec string) bool {
	if spec == MemUsed {
		return true
	}
	_, ok := memPassThrough[spec]
	return ok
}
