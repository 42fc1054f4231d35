package metrics

import "testing"

func TestParseCPULine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantOK    bool
		wantLabel string
		want      SamplePoint
	}{
		{
			name:      "aggregate with trailing fields",
			line:      "cpu  100 0 100 700 50 0 50 9 9 9",
			wantOK:    true,
			wantLabel: "cpu",
			want:      SamplePoint{Total: 1000, NonIdle: 250},
		},
		{
			name:      "exactly seven counters",
			line:      "cpu3 1 2 3 4 5 6 7",
			wantOK:    true,
			wantLabel: "cpu3",
			want:      SamplePoint{Total: 28, NonIdle: 19},
		},
		{name: "too few counters", line: "cpu 1 2 3 4 5 6"},
		{name: "non numeric", line: "cpu 1 2 x 4 5 6 7"},
		{name: "negative", line: "cpu 1 2 -3 4 5 6 7"},
		{name: "empty", line: ""},
		{name: "sum overflows", line: "cpu 1 0 0 18446744073709551615 5 0 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, p, ok := parseCPULine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if label != tt.wantLabel {
				t.Errorf("label = %q, want %q", label, tt.wantLabel)
			}
			if p != tt.want {
				t.Errorf("sample = %+v, want %+v", p, tt.want)
			}
		})
	}
}

func TestFindCPULine(t *testing.T) {
	lines := []string{
		"cpu  1 1 1 1 1 1 1",
		"cpu1 2 2 2 2 2 2 2",
		"cpu10 3 3 3 3 3 3 3",
		"cpu1 4 4 4 4 4 4 4",
		"intr 12345",
	}

	if got, ok := findCPULine(lines, "cpu1"); !ok || got != lines[1] {
		t.Errorf("cpu1 = (%q, %v), want first cpu1 line", got, ok)
	}
	if got, ok := findCPULine(lines, "cpu10"); !ok || got != lines[2] {
		t.Errorf("cpu10 = (%q, %v)", got, ok)
	}
	if got, ok := findCPULine(lines, "cpu"); !ok || got != lines[0] {
		t.Errorf("cpu = (%q, %v)", got, ok)
	}
	if _, ok := findCPULine(lines, "cpu2"); ok {
		t.Error("cpu2 should not be found")
	}
}

func TestParseMeminfo(t *testing.T) {
	values := parseMeminfo([]string{
		"MemTotal:       16000000 kB",
		"MemFree:         4000000 kB",
		"HugePages_Total:       0",
		"garbage",
		"Broken: notanumber kB",
		"NoColon 12 kB",
	})

	want := map[string]uint64{
		"MemTotal":        16000000,
		"MemFree":         4000000,
		"HugePages_Total": 0,
	}
	if len(values) != len(want) {
		t.Fatalf("parsed %d keys (%v), want %d", len(values), values, len(want))
	}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("%s = %d, want %d", k, values[k], v)
		}
	}
}
