package testutil

import (
	"fmt"
	"strconv"
	"strings"
)

// CPUCounters is one /proc/stat cpu line's leading jiffy counters.
type CPUCounters struct {
	User, Nice, System, Idle, IOWait, IRQ, SoftIRQ uint64
}

// Line renders the counters as a /proc/stat line labelled label, followed
// by the steal/guest columns a real kernel appends.
func (c CPUCounters) Line(label string) string {
	return fmt.Sprintf("%s %d %d %d %d %d %d %d 0 0 0",
		label, c.User, c.Nice, c.System, c.Idle, c.IOWait, c.IRQ, c.SoftIRQ)
}

// StatLine builds a raw cpu line from label and any number of counters.
// Use it for malformed fixtures; CPUCounters.Line covers the normal case.
func StatLine(label string, counters ...uint64) string {
	parts := make([]string, 0, len(counters)+1)
	parts = append(parts, label)
	for _, n := range counters {
		parts = append(parts, strconv.FormatUint(n, 10))
	}
	return strings.Join(parts, " ")
}

// MeminfoLine renders a "<Key>:   <kb> kB" line.
func MeminfoLine(key string, kb uint64) string {
	return fmt.Sprintf("%-16s%8d kB", key+":", kb)
}
