package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/HerbHall/hostmon/internal/metrics"
	"github.com/spf13/afero"
)

// csvHeaders returns the CSV column headers.
func csvHeaders() []string {
	return []string{"timestamp", "metric_type", "metric_key", "metric_value"}
}

// File appends snapshots as CSV rows to a file. The file is opened per
// snapshot so that external rotation or deletion is picked up.
type File struct {
	fs   afero.Fs
	path string
}

// Compile-time guard.
var _ Sink = (*File)(nil)

// NewFile returns a CSV sink appending to path on fs.
func NewFile(fs afero.Fs, path string) *File {
	return &File{fs: fs, path: path}
}

// Name returns "file:" followed by the output path.
func (f *File) Name() string { return "file:" + f.path }

// Path returns the output file path.
func (f *File) Path() string { return f.path }

// Emit appends one row per value in snap, writing the header first when the
// file does not exist yet.
func (f *File) Emit(snap metrics.Snapshot) error {
	exists, err := afero.Exists(f.fs, f.path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", f.path, err)
	}

	out, err := f.fs.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}

	w := csv.NewWriter(out)
	if !exists {
		_ = w.Write(csvHeaders())
	}
	for _, row := range snapshotToCSVRows(snap) {
		_ = w.Write(row)
	}
	w.Flush()

	if err := w.Error(); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.path, err)
	}
	return nil
}

// snapshotToCSVRows converts a snapshot to rows matching csvHeaders order.
func snapshotToCSVRows(snap metrics.Snapshot) [][]string {
	var rows [][]string
	if snap.CPU != nil {
		if snap.CPU.Total != nil {
			rows = append(rows, []string{snap.Timestamp, "cpu", "total", formatPercent(*snap.CPU.Total)})
		}
		for _, id := range snap.CPU.CoreIDs() {
			key := "core_" + strconv.Itoa(id)
			rows = append(rows, []string{snap.Timestamp, "cpu", key, formatPercent(snap.CPU.Cores[id])})
		}
	}
	for _, key := range snap.MemoryKeys() {
		mb := strconv.FormatUint(snap.Memory[key]/kbPerMB, 10)
		rows = append(rows, []string{snap.Timestamp, "memory", key, mb})
	}
	return rows
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
