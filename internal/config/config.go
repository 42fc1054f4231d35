// Package config loads and validates the sampler's declarative configuration.
package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/HerbHall/hostmon/internal/metrics"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// formats are the file extensions read in their own syntax.
var formats = []string{"json", "yaml", "yml", "toml"}

// EnvPrefix prefixes environment overrides, e.g. HOSTMON_SETTINGS_PERIOD.
const EnvPrefix = "HOSTMON"

// MetricType selects a metric family.
type MetricType string

// Supported metric types.
const (
	MetricCPU    MetricType = "cpu"
	MetricMemory MetricType = "memory"
)

// OutputType selects a sink.
type OutputType string

// Supported output types.
const (
	OutputConsole OutputType = "console"
	OutputFile    OutputType = "file"
)

// Config is the full sampler configuration.
type Config struct {
	Settings Settings `mapstructure:"settings" yaml:"settings"`
	Metrics  []Metric `mapstructure:"metrics" yaml:"metrics"`
	Outputs  []Output `mapstructure:"outputs" yaml:"outputs"`
}

// Settings holds global sampler settings.
type Settings struct {
	// Period is the pause between sampling passes, in seconds.
	Period   int    `mapstructure:"period" yaml:"period"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level,omitempty"`
}

// Metric requests one metric family. IDs applies to cpu, Specs to memory.
type Metric struct {
	Type  MetricType `mapstructure:"type" yaml:"type"`
	IDs   []int      `mapstructure:"ids" yaml:"ids,omitempty"`
	Specs []string   `mapstructure:"spec" yaml:"spec,omitempty"`
}

// Output describes one sink.
type Output struct {
	Type OutputType `mapstructure:"type" yaml:"type"`
	Path string     `mapstructure:"path" yaml:"path,omitempty"`
}

// Load reads the configuration file at path and validates it. JSON is
// assumed unless the extension is yaml, yml or toml.
// Every failure is returned as *Error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if !slices.Contains(formats, ext) {
		v.SetConfigType("json")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{"settings.period", "settings.log_level"} {
		if err := v.BindEnv(key); err != nil {
			return nil, &Error{Path: path, Field: key, Err: err}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	if !v.IsSet("settings.period") {
		return nil, &Error{Path: path, Field: "settings.period", Err: ErrMissingField}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	if err := cfg.Validate(); err != nil {
		if ce, ok := err.(*Error); ok {
			ce.Path = path
		}
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values. It returns *Error describing the first
// problem found.
func (c *Config) Validate() error {
	if c.Settings.Period <= 0 {
		return &Error{Field: "settings.period", Err: fmt.Errorf("%w: got %d", ErrInvalidPeriod, c.Settings.Period)}
	}
	if c.Settings.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.Settings.LogLevel); err != nil {
			return &Error{Field: "settings.log_level", Err: err}
		}
	}

	for i, m := range c.Metrics {
		field := fmt.Sprintf("metrics[%d]", i)
		switch m.Type {
		case MetricCPU:
			for _, id := range m.IDs {
				if id < 0 {
					return &Error{Field: field + ".ids", Err: fmt.Errorf("core id %d is negative", id)}
				}
			}
		case MetricMemory:
		case "":
			return &Error{Field: field + ".type", Err: ErrMissingField}
		default:
			return &Error{Field: field + ".type", Err: fmt.Errorf("%w %q", ErrUnknownType, m.Type)}
		}
	}

	for i, o := range c.Outputs {
		field := fmt.Sprintf("outputs[%d]", i)
		switch o.Type {
		case OutputConsole:
		case OutputFile:
			if o.Path == "" {
				return &Error{Field: field + ".path", Err: ErrMissingField}
			}
		case "":
			return &Error{Field: field + ".type", Err: ErrMissingField}
		default:
			return &Error{Field: field + ".type", Err: fmt.Errorf("%w %q", ErrUnknownType, o.Type)}
		}
	}
	return nil
}

// Interval returns the sampling period as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Settings.Period) * time.Second
}

// Level returns the configured log level, or fallback when none is set.
func (c *Config) Level(fallback zapcore.Level) zapcore.Level {
	if c.Settings.LogLevel == "" {
		return fallback
	}
	l, err := zapcore.ParseLevel(c.Settings.LogLevel)
	if err != nil {
		return fallback
	}
	return l
}

// Request translates the metric list into collector arguments. Entries of
// the same type are merged in order; duplicate ids and specs are dropped.
func (c *Config) Request() metrics.Request {
	var req metrics.Request
	for _, m := range c.Metrics {
		switch m.Type {
		case MetricCPU:
			req.CPU = true
			for _, id := range m.IDs {
				if !slices.Contains(req.Cores, id) {
					req.Cores = append(req.Cores, id)
				}
			}
		case MetricMemory:
			req.Memory = true
			for _, s := range m.Specs {
				if !slices.Contains(req.MemSpecs, s) {
					req.MemSpecs = append(req.MemSpecs, s)
				}
			}
		}
	}
	return req
}

// UnknownMemSpecs returns requested memory specs the collector will never
// report.
func (c *Config) UnknownMemSpecs() []string {
	var unknown []string
	for _, s := range c.Request().MemSpecs {
		if !metrics.IsMemSpec(s) {
			unknown = append(unknown, s)
		}
	}
	return unknown
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
