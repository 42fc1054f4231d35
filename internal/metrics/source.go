package metrics

import (
	"bufio"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Default pseudo-file locations under the proc mount.
const (
	DefaultProcRoot = "/proc"
	statFile        = "stat"
	meminfoFile     = "meminfo"
)

// CounterSource reads raw kernel counter lines. It holds no state between
// calls; every read opens the pseudo-file afresh.
type CounterSource interface {
	StatLines() ([]string, error)
	MeminfoLines() ([]string, error)
}

// ProcSource reads counters from a proc filesystem mounted at Root.
type ProcSource struct {
	fs   afero.Fs
	root string
}

// Compile-time guard.
var _ CounterSource = (*ProcSource)(nil)

// NewProcSource returns a source reading from root on fs. An empty root
// means DefaultProcRoot.
func NewProcSource(fs afero.Fs, root string) *ProcSource {
	if root == "" {
		root = DefaultProcRoot
	}
	return &ProcSource{fs: fs, root: root}
}

// StatLines returns the lines of <root>/stat.
func (s *ProcSource) StatLines() ([]string, error) {
	return s.readLines(statFile)
}

// MeminfoLines returns the lines of <root>/meminfo.
func (s *ProcSource) MeminfoLines() ([]string, error) {
	return s.readLines(meminfoFile)
}

func (s *ProcSource) readLines(name string) ([]string, error) {
	path := filepath.Join(s.root, name)
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
