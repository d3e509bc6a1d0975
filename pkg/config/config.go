// Package config loads the hillchart configuration file.
//
// The file is TOML, looked up at $XDG_CONFIG_HOME/hillchart/config.toml
// (falling back to ~/.config/hillchart/config.toml). Every key is
// optional: the file is decoded over [Default], so unset fields keep their
// defaults.
//
//	[chart]
//	name = "roadmap"
//
//	[layout]
//	stack_offset = 24
//
//	[store]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/hillchart/pkg/errors"
	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/hill/curve"
	"github.com/matzehuels/hillchart/pkg/store"
)

// Defaults not owned by another package.
const (
	DefaultChart        = "default"
	DefaultAddr         = "127.0.0.1:8080"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultWidth        = 1200
	DefaultHeight       = 600
)

// Config is the full configuration file.
type Config struct {
	Chart  Chart        `toml:"chart"`
	Curve  curve.Curve  `toml:"curve"`
	Layout Layout       `toml:"layout"`
	Guide  Guide        `toml:"guide"`
	Store  store.Config `toml:"store"`
	Server Server       `toml:"server"`

	// Path is the file the configuration was read from, empty when no
	// file exists.
	Path string `toml:"-"`

	// Unknown lists keys in the file that matched no field.
	Unknown []string `toml:"-"`
}

// Chart selects the chart and its rendering.
type Chart struct {
	Name   string `toml:"name"`
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Layout tunes the overlap resolver.
type Layout struct {
	DotRadius   float64 `toml:"dot_radius"`
	StackOffset float64 `toml:"stack_offset"`
	TieEpsilon  float64 `toml:"tie_epsilon"`
	OverlapX    float64 `toml:"overlap_x"`
	OverlapY    float64 `toml:"overlap_y"`
	Samples     int     `toml:"samples"`
}

// Guide places the dashed midpoint line.
type Guide struct {
	Gap   float64 `toml:"gap"`
	Start float64 `toml:"start"`
	End   float64 `toml:"end"`
}

// Server configures `hillchart serve`.
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`

	// ArtifactCache is "file", "redis" or "none". The redis cache reuses
	// store.redis_url.
	ArtifactCache string `toml:"artifact_cache"`
}

// Duration is a time.Duration written as a string ("10s") in TOML.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	h := hill.DefaultConfig()
	return &Config{
		Chart: Chart{Name: DefaultChart, Width: DefaultWidth, Height: DefaultHeight},
		Curve: h.Curve,
		Layout: Layout{
			DotRadius:   h.DotRadius,
			StackOffset: h.StackOffset,
			TieEpsilon:  h.TieEpsilon,
			OverlapX:    h.OverlapX,
			OverlapY:    h.OverlapY,
			Samples:     h.Samples,
		},
		Guide: Guide{Gap: h.GuideGap, Start: h.GuideStart, End: h.GuideEnd},
		Store: store.Config{
			Backend:         store.BackendFile,
			RedisPrefix:     store.DefaultRedisPrefix,
			MongoDatabase:   store.DefaultMongoDatabase,
			MongoCollection: store.DefaultMongoCollection,
		},
		Server: Server{
			Addr:          DefaultAddr,
			ReadTimeout:   Duration{DefaultReadTimeout},
			WriteTimeout:  Duration{DefaultWriteTimeout},
			ArtifactCache: "file",
		},
	}
}

// DefaultPath returns the configuration file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "hillchart", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "hillchart", "config.toml"), nil
}

// Load reads path over the defaults and validates the result. An empty
// path means [DefaultPath]. A missing file at the default path is not an
// error; a missing file named explicitly is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
		return cfg, nil
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}

	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	for _, key := range md.Undecoded() {
		c.Unknown = append(c.Unknown, key.String())
	}
	return nil
}

// Engine returns the layout engine configuration.
func (c *Config) Engine() hill.Config {
	return hill.Config{
		Curve:       c.Curve,
		DotRadius:   c.Layout.DotRadius,
		StackOffset: c.Layout.StackOffset,
		TieEpsilon:  c.Layout.TieEpsilon,
		OverlapX:    c.Layout.OverlapX,
		OverlapY:    c.Layout.OverlapY,
		Samples:     c.Layout.Samples,
		GuideGap:    c.Guide.Gap,
		GuideStart:  c.Guide.Start,
		GuideEnd:    c.Guide.End,
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Engine().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid layout")
	}
	if err := errors.ValidateChartName(c.Chart.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "chart.name")
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	switch c.Store.Backend {
	case store.BackendFile, store.BackendMemory:
	case store.BackendRedis:
		if c.Store.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.redis_url is required for the redis backend")
		}
	case store.BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store.backend %q", c.Store.Backend)
	}
	switch c.Server.ArtifactCache {
	case "file", "none":
	case "redis":
		if c.Store.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "server.artifact_cache = \"redis\" needs store.redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown server.artifact_cache %q", c.Server.ArtifactCache)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	return enc.Encode(c)
}

// String returns the TOML form.
func (c *Config) String() string {
	var buf bytes.Buffer
	_ = c.Encode(&buf)
	return buf.String()
}

// WriteDefault writes the default configuration to path, creating parent
// directories. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrCodeInvalidPath, "%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create config dir")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create config")
	}
	if err := Default().Encode(f); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write config")
	}
	return f.Close()
}
