// Package cli implements the hillchart command-line interface.
//
// Every command works on one chart, selected by --chart or the [chart]
// section of the config file, and persisted in the configured store. The
// CLI is built using cobra and logs with charmbracelet/log.
//
// # Commands
//
//   - add, remove, move, nudge, list, clear: edit milestones
//   - render, export, alignments: write the chart out
//   - edit: interactive editor
//   - serve: HTTP API
//   - config, cache, completion: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs layout passes, store round trips and cache lookups. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hillchart/pkg/cache"
	"github.com/matzehuels/hillchart/pkg/chart"
	"github.com/matzehuels/hillchart/pkg/config"
	"github.com/matzehuels/hillchart/pkg/observability"
	"github.com/matzehuels/hillchart/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "hillchart"

	// shortIDLen is how much of a marker id is shown in listings.
	shortIDLen = 8
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	flags globalFlags
	cfg   *config.Config
}

// globalFlags are the persistent flags of the root command. Non-empty
// values override the config file.
type globalFlags struct {
	config string
	store  string
	path   string
	chart  string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the CLI also
// registers logging observability hooks.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		h := &logHooks{logger: c.Logger}
		observability.SetChartHooks(h)
		observability.SetRenderHooks(h)
		observability.SetCacheHooks(h)
	}
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration on first use and applies flag overrides.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.flags.config)
	if err != nil {
		return nil, err
	}
	for _, key := range cfg.Unknown {
		c.Logger.Warn("unknown config key", "key", key, "file", cfg.Path)
	}

	if c.flags.store != "" {
		cfg.Store.Backend = c.flags.store
	}
	if c.flags.path != "" {
		cfg.Store.Path = c.flags.path
	}
	if c.flags.chart != "" {
		cfg.Chart.Name = c.flags.chart
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// openChart opens the selected chart. The returned func closes the store.
func (c *CLI) openChart(ctx context.Context) (*chart.Chart, func(), error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	ch, err := chart.Open(ctx, cfg.Chart.Name, s, cfg.Engine(), chart.WithLogger(c.Logger))
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	c.Logger.Debug("opened chart", "chart", ch.Name(), "store", s.Name(), "markers", len(ch.Markers()))
	return ch, func() { s.Close() }, nil
}

// =============================================================================
// Cache
// =============================================================================

func newArtifactCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/hillchart/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Output
// =============================================================================

// nopCloser wraps an io.Writer to add a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. An empty path or
// "-" means stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}
