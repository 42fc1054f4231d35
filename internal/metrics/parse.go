package metrics

import (
	"math/bits"
	"strconv"
	"strings"
)

// cpuFieldCount is the number of leading counters used from a cpu line:
// user, nice, system, idle, iowait, irq, softirq.
const cpuFieldCount = 7

// parseCPULine parses a /proc/stat cpu line. Trailing counters (steal,
// guest, ...) are ignored. ok is false when the line has fewer than
// cpuFieldCount counters, any of them is not a number, or their sum
// overflows uint64.
func parseCPULine(line string) (label string, p SamplePoint, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < cpuFieldCount+1 {
		return "", SamplePoint{}, false
	}

	var v [cpuFieldCount]uint64
	for i := range v {
		n, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return "", SamplePoint{}, false
		}
		v[i] = n
	}

	var total, carry uint64
	for _, n := range v {
		total, carry = bits.Add64(total, n, 0)
		if carry != 0 {
			return "", SamplePoint{}, false
		}
	}
	idle, iowait := v[3], v[4]
	return fields[0], SamplePoint{Total: total, NonIdle: total - idle - iowait}, true
}

// findCPULine returns the first line labelled exactly label.
func findCPULine(lines []string, label string) (string, bool) {
	for _, line := range lines {
		if !strings.HasPrefix(line, label) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == label {
			return line, true
		}
	}
	return "", false
}

// parseMeminfo builds a key -> kB mapping from "<Key>: <value> [unit]"
// lines. Lines that do not match are skipped.
func parseMeminfo(lines []string) map[string]uint64 {
	values := make(map[string]uint64, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		key, found := strings.CutSuffix(fields[0], ":")
		if !found || key == "" {
			continue
		}
		n, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		values[key] = n
	}
	return values
}
