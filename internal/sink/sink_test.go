package sink

import (
	"bytes"
	"errors"
	"testing"

	"github.com/HerbHall/hostmon/internal/config"
	"github.com/HerbHall/hostmon/internal/metrics"
	"github.com/HerbHall/hostmon/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ptr(v float64) *float64 { return &v }

func sampleSnapshot() metrics.Snapshot {
	return metrics.Snapshot{
		Timestamp: "04-03-2025 05:06:07",
		CPU: &metrics.CPUStats{
			Total: ptr(12.346),
			Cores: map[int]float64{10: 1, 2: 99.5, 0: 50},
		},
		Memory: map[string]uint64{"used": 12000000, "free": 4000000},
	}
}

func TestConsole_Emit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Emit(sampleSnapshot()))

	want := "System Metrics at 04-03-2025 05:06:07:\n" +
		"CPU Usage:\n" +
		"  Total: 12.35%\n" +
		"  Core 0: 50.00%\n" +
		"  Core 2: 99.50%\n" +
		"  Core 10: 1.00%\n" +
		"Memory Usage (MB):\n" +
		"  free: 3906\n" +
		"  used: 11718\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestConsole_EmitSectionsOnlyWhenRequested(t *testing.T) {
	var buf bytes.Buffer
	snap := metrics.Snapshot{Timestamp: "t", CPU: &metrics.CPUStats{Cores: map[int]float64{}}}
	require.NoError(t, NewConsole(&buf).Emit(snap))
	assert.Equal(t, "System Metrics at t:\nCPU Usage:\n\n", buf.String())
}

func TestFile_WritesHeaderOnce(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := NewFile(fs, "/var/log/metrics.csv")
	require.NoError(t, fs.MkdirAll("/var/log", 0o755))

	require.NoError(t, f.Emit(sampleSnapshot()))
	require.NoError(t, f.Emit(metrics.Snapshot{
		Timestamp: "04-03-2025 05:06:08",
		Memory:    map[string]uint64{"free": 2048},
	}))

	data, err := afero.ReadFile(fs, "/var/log/metrics.csv")
	require.NoError(t, err)

	want := "timestamp,metric_type,metric_key,metric_value\n" +
		"04-03-2025 05:06:07,cpu,total,12.35\n" +
		"04-03-2025 05:06:07,cpu,core_0,50.00\n" +
		"04-03-2025 05:06:07,cpu,core_2,99.50\n" +
		"04-03-2025 05:06:07,cpu,core_10,1.00\n" +
		"04-03-2025 05:06:07,memory,free,3906\n" +
		"04-03-2025 05:06:07,memory,used,11718\n" +
		"04-03-2025 05:06:08,memory,free,2\n"
	assert.Equal(t, want, string(data))
}

func TestFile_ExistingFileGetsNoHeader(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/m.csv", []byte("old,row\n"), 0o644))

	require.NoError(t, NewFile(fs, "/m.csv").Emit(metrics.Snapshot{
		Timestamp: "t",
		Memory:    map[string]uint64{"free": 1024},
	}))

	data, err := afero.ReadFile(fs, "/m.csv")
	require.NoError(t, err)
	assert.Equal(t, "old,row\nt,memory,free,1\n", string(data))
}

func TestFile_OpenFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := NewFile(fs, "/m.csv").Emit(sampleSnapshot())
	assert.Error(t, err)
}

// failingSink always fails.
type failingSink struct{ calls int }

func (s *failingSink) Name() string { return "broken" }

func (s *failingSink) Emit(metrics.Snapshot) error {
	s.calls++
	return errors.New("cannot write")
}

func TestRouter_ContinuesPastFailingSink(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	rec, err := telemetry.NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)

	var buf bytes.Buffer
	bad := &failingSink{}
	r := NewRouter([]Sink{bad, NewConsole(&buf)}, zap.New(core), rec)
	assert.Equal(t, 2, r.Len())

	err = r.Emit(sampleSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink broken")
	assert.Contains(t, buf.String(), "System Metrics at")

	// A second failure inside the throttle interval is counted but not logged again.
	_ = r.Emit(sampleSnapshot())
	assert.Equal(t, 2, bad.calls)
	assert.Equal(t, 1, logs.FilterMessage("sink write failed").Len())
	assert.Equal(t, uint64(2), rec.Summary().SinkErrors)
}

func TestRouter_NoSinks(t *testing.T) {
	r := NewRouter(nil, zap.NewNop(), nil)
	assert.NoError(t, r.Emit(sampleSnapshot()))
}

func TestFromConfig(t *testing.T) {
	var buf bytes.Buffer
	fs := afero.NewMemMapFs()

	sinks, err := FromConfig([]config.Output{
		{Type: config.OutputConsole},
		{Type: config.OutputFile, Path: "/out.csv"},
	}, &buf, fs)
	require.NoError(t, err)
	require.Len(t, sinks, 2)

	assert.Equal(t, "console", sinks[0].Name())
	file, ok := sinks[1].(*File)
	require.True(t, ok)
	assert.Equal(t, "/out.csv", file.Path())

	_, err = FromConfig([]config.Output{{Type: "syslog"}}, &buf, fs)
	assert.Error(t, err)
}
