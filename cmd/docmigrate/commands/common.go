package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/docmigrate/internal/config"
	"git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/logfields"
	"git.home.luguber.info/inful/docmigrate/internal/metrics"
)

// Global carries process-wide state into every command.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
	RunID  string
	Out    io.Writer
	In     io.Reader
}

func (g *Global) context() context.Context {
	if g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docmigrate.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Rules   RulesCmd   `cmd:"" help:"Inspect the configured rewrite rules"`
	Rewrite RewriteCmd `cmd:"" help:"Rewrite links in documentation files in place"`
	Nav     NavCmd     `cmd:"" help:"Convert a sidebar definition into meta.json"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.RunID = uuid.NewString()
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(logfields.RunID(g.RunID))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig loads the configuration and classifies failures.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, err.Error()).
			WithContext("path", path).Build()
	}
	return cfg, nil
}

// runMetrics records one command run and, when a textfile is configured,
// writes the registry at the end.
type runMetrics struct {
	command  string
	start    time.Time
	recorder metrics.Recorder
	prom     *metrics.PrometheusRecorder
	textfile string
}

func newRunMetrics(command string, cfg *config.Config) *runMetrics {
	m := &runMetrics{command: command, start: time.Now(), recorder: metrics.NoopRecorder{}}
	if cfg != nil && cfg.Metrics.Textfile != "" {
		m.prom = metrics.NewPrometheusRecorder(nil)
		m.recorder = m.prom
		m.textfile = cfg.Metrics.Textfile
	}
	return m
}

func (m *runMetrics) finish(logger *slog.Logger, outcome metrics.OutcomeLabel) {
	m.recorder.ObserveRunDuration(m.command, time.Since(m.start))
	m.recorder.IncRunOutcome(m.command, outcome)
	if m.prom == nil {
		return
	}
	if err := m.prom.WriteTextfile(m.textfile); err != nil {
		logger.Warn("Failed to write metrics", logfields.Path(m.textfile), logfields.Error(err))
	}
}

func outcomeFor(err error, warnings int) metrics.OutcomeLabel {
	switch {
	case err != nil:
		return metrics.OutcomeFailed
	case warnings > 0:
		return metrics.OutcomeWarning
	default:
		return metrics.OutcomeSuccess
	}
}
