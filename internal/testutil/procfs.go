package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// ProcFS is an in-memory stand-in for the /proc mount.
type ProcFS struct {
	Fs   afero.Fs
	Root string
}

// NewProcFS returns an empty in-memory proc tree rooted at /proc.
func NewProcFS() *ProcFS {
	return &ProcFS{Fs: afero.NewMemMapFs(), Root: "/proc"}
}

// SetStat replaces the contents of <root>/stat.
func (p *ProcFS) SetStat(t *testing.T, lines ...string) {
	t.Helper()
	p.write(t, "stat", lines)
}

// SetMeminfo replaces the contents of <root>/meminfo.
func (p *ProcFS) SetMeminfo(t *testing.T, lines ...string) {
	t.Helper()
	p.write(t, "meminfo", lines)
}

// Remove deletes <root>/name so that the next read fails.
func (p *ProcFS) Remove(t *testing.T, name string) {
	t.Helper()
	if err := p.Fs.Remove(filepath.Join(p.Root, name)); err != nil {
		t.Fatalf("testutil.ProcFS.Remove(%s): %v", name, err)
	}
}

func (p *ProcFS) write(t *testing.T, name string, lines []string) {
	t.Helper()
	path := filepath.Join(p.Root, name)
	data := strings.Join(lines, "\n") + "\n"
	if err := afero.WriteFile(p.Fs, path, []byte(data), 0o444); err != nil {
		t.Fatalf("testutil.ProcFS write %s: %v", path, err)
	}
}
