// Package store persists charts.
//
// A chart is saved as one [Document] holding its markers. The layout state
// (alignments, the drag in progress) is never persisted: it is rebuilt by the
// engine after loading.
//
// Backends:
//   - file: one JSON file per chart, written atomically (CLI default)
//   - redis: one key per chart, for `hillchart serve`
//   - mongo: one document per chart
//   - memory: in-process, for tests
//
// # Usage
//
//	s, err := store.Open(ctx, store.Config{Backend: "file", Path: dir})
//	doc, err := s.Load(ctx, "roadmap")
//	if errors.Is(err, errors.ErrCodeChartNotFound) {
//	    // new chart
//	}
//
// The file and redis backends share one JSON codec, which also reads the
// milestone list saved by the legacy browser app (a bare array of
// {id, name, x, progress} objects with numeric ids).
package store

import (
	"context"
	"math"
	"time"

	"github.com/matzehuels/hillchart/pkg/errors"
	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/hill/curve"
)

// SchemaVersion is written into every saved document.
const SchemaVersion = 1

// Store loads and saves chart documents.
type Store interface {
	// Load returns the chart. A chart that was never saved yields an
	// error with code CHART_NOT_FOUND.
	Load(ctx context.Context, chart string) (Document, error)

	// Save replaces the chart.
	Save(ctx context.Context, chart string, doc Document) error

	// Name returns the backend name for logs and metrics.
	Name() string

	// Close releases backend resources.
	Close() error
}

// Document is the persisted form of a chart.
type Document struct {
	Version   int           `json:"version" bson:"version"`
	Markers   []hill.Marker `json:"markers" bson:"markers"`
	UpdatedAt time.Time     `json:"updated_at,omitzero" bson:"updated_at"`
}

// NewDocument returns a document for markers stamped with the current time.
func NewDocument(markers []hill.Marker) Document {
	if markers == nil {
		markers = []hill.Marker{}
	}
	return Document{Version: SchemaVersion, Markers: markers, UpdatedAt: time.Now().UTC()}
}

// Resolve fills in marker positions that were stored as progress only.
// Decoding leaves such positions NaN since the codec does not know the
// curve. Markers with neither are placed at the start of the domain.
func (d *Document) Resolve(c curve.Curve) {
	for i := range d.Markers {
		m := &d.Markers[i]
		if !math.IsNaN(m.Position) {
			continue
		}
		if math.IsNaN(m.Progress) {
			m.Progress = 0
		}
		m.Position = c.PositionAt(m.Progress)
	}
}

// Backend names.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`

	// file
	Path string `toml:"path"`

	// redis
	RedisURL    string `toml:"redis_url"`
	RedisPrefix string `toml:"redis_prefix"`

	// mongo
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return OpenRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case BackendMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (want file, redis, mongo or memory)", cfg.Backend)
	}
}

func notFound(chart string) error {
	return errors.New(errors.ErrCodeChartNotFound, "chart %q not found", chart)
}
