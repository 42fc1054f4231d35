package sink

import (
	"bufio"
	"fmt"
	"io"

	"github.com/HerbHall/hostmon/internal/metrics"
)

// kbPerMB converts meminfo kilobytes to the megabytes shown by sinks.
const kbPerMB = 1024

// Console writes human-readable snapshots to w.
type Console struct {
	w io.Writer
}

// Compile-time guard.
var _ Sink = (*Console)(nil)

// NewConsole returns a console sink writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Name returns "console".
func (c *Console) Name() string { return "console" }

// Emit renders snap as an indented text block followed by a blank line.
func (c *Console) Emit(snap metrics.Snapshot) error {
	bw := bufio.NewWriter(c.w)

	fmt.Fprintf(bw, "System Metrics at %s:\n", snap.Timestamp)

	if snap.CPU != nil {
		fmt.Fprintln(bw, "CPU Usage:")
		if snap.CPU.Total != nil {
			fmt.Fprintf(bw, "  Total: %.2f%%\n", *snap.CPU.Total)
		}
		for _, id := range snap.CPU.CoreIDs() {
			fmt.Fprintf(bw, "  Core %d: %.2f%%\n", id, snap.CPU.Cores[id])
		}
	}

	if snap.Memory != nil {
		fmt.Fprintln(bw, "Memory Usage (MB):")
		for _, key := range snap.MemoryKeys() {
			fmt.Fprintf(bw, "  %s: %d\n", key, snap.Memory[key]/kbPerMB)
		}
	}

	fmt.Fprintln(bw)
	return bw.Flush()
}
