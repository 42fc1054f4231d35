package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/HerbHall/hostmon/internal/config"
	"github.com/HerbHall/hostmon/internal/metrics"
	"github.com/HerbHall/hostmon/internal/monitor"
	"github.com/HerbHall/hostmon/internal/sink"
	"github.com/HerbHall/hostmon/internal/telemetry"
	"github.com/HerbHall/hostmon/internal/version"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// flags holds command-line options.
type flags struct {
	LogLevel string
	Check    bool
	ProcRoot string
	EnvFile  string
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           "hostmon <config>",
		Short:         "Periodically sample host CPU and memory counters",
		Args:          cobra.ExactArgs(1),
		Version:       version.Info(),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), args[0], f, stdin, stdout, stderr)
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.Flags().StringVar(&f.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides settings.log_level")
	cmd.Flags().BoolVar(&f.Check, "check", false, "validate the configuration, print it as YAML and exit")
	cmd.Flags().StringVar(&f.ProcRoot, "proc-root", metrics.DefaultProcRoot, "mount point of the proc filesystem")
	cmd.Flags().StringVar(&f.EnvFile, "env-file", ".env", "dotenv file loaded before the configuration")

	return cmd
}

func run(ctx context.Context, configPath string, f *flags, stdin io.Reader, stdout, stderr io.Writer) error {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger := newLogger(level, stderr)
	defer logger.Sync()

	if err := godotenv.Load(f.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load env file", zap.String("path", f.EnvFile), zap.Error(err))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load configuration", zap.Error(err))
		return &loggedError{err}
	}

	level.SetLevel(cfg.Level(zapcore.InfoLevel))
	if f.LogLevel != "" {
		l, err := zapcore.ParseLevel(f.LogLevel)
		if err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
		level.SetLevel(l)
	}

	if f.Check {
		out, err := cfg.YAML()
		if err != nil {
			return fmt.Errorf("render configuration: %w", err)
		}
		_, err = stdout.Write(out)
		return err
	}

	logger.Info("hostmon starting", zap.Any("build", version.Map()), zap.String("config", configPath))
	if unknown := cfg.UnknownMemSpecs(); len(unknown) > 0 {
		logger.Warn("ignoring unknown memory specs",
			zap.Strings("specs", unknown),
			zap.Strings("known", metrics.KnownMemSpecs),
		)
	}

	rec, err := telemetry.NewRecorder(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	osFs := afero.NewOsFs()
	sinks, err := sink.FromConfig(cfg.Outputs, stdout, osFs)
	if err != nil {
		return fmt.Errorf("outputs: %w", err)
	}
	router := sink.NewRouter(sinks, logger, rec)
	collector := metrics.NewCollector(
		metrics.NewProcSource(osFs, f.ProcRoot),
		logger.Named("collector"),
		metrics.WithRecorder(rec),
	)

	m, err := monitor.New(collector, router, monitor.Options{
		Period:   cfg.Interval(),
		Request:  cfg.Request(),
		Recorder: rec,
	}, logger.Named("monitor"))
	if err != nil {
		return err
	}
	if err := m.Start(ctx); err != nil {
		return err
	}
	logger.Info("monitoring started; press Enter to stop", zap.Int("sinks", router.Len()))

	select {
	case <-waitForEnter(stdin):
		logger.Info("stop requested from stdin")
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	m.Stop()
	s := rec.Summary()
	logger.Info("monitoring stopped",
		zap.Uint64("cycles", s.Cycles),
		zap.Uint64("source_errors", s.SourceErrors),
		zap.Uint64("sink_errors", s.SinkErrors),
	)
	return nil
}

// waitForEnter returns a channel closed once a full line is read from r.
// End of input leaves the channel open so that a closed stdin does not stop
// a daemonised monitor.
func waitForEnter(r io.Reader) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		if _, err := bufio.NewReader(r).ReadString('\n'); err == nil {
			close(ch)
		}
	}()
	return ch
}

func newLogger(level zap.AtomicLevel, w io.Writer) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core, zap.AddCaller())
}
