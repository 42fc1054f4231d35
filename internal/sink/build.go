package sink

import (
	"fmt"
	"io"

	"github.com/HerbHall/hostmon/internal/config"
	"github.com/spf13/afero"
)

// FromConfig builds one sink per configured output, in order. Console sinks
// write to stdout; file sinks append through fs.
func FromConfig(outputs []config.Output, stdout io.Writer, fs afero.Fs) ([]Sink, error) {
	sinks := make([]Sink, 0, len(outputs))
	for i, o := range outputs {
		switch o.Type {
		case config.OutputConsole:
			sinks = append(sinks, NewConsole(stdout))
		case config.OutputFile:
			sinks = append(sinks, NewFile(fs, o.Path))
		default:
			return nil, fmt.Errorf("outputs[%d]: unsupported type %q", i, o.Type)
		}
	}
	return sinks, nil
}
