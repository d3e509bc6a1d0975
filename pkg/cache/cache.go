// Package cache stores rendered artifacts keyed by the layout they came from.
//
// Rasterizing a chart shells out to rsvg-convert, which is slow enough to be
// noticeable in the TUI and the HTTP API. Artifacts are therefore cached
// under a key derived from the frame and the output options; a changed
// layout produces a new key, so entries never need explicit invalidation.
//
// Backends:
//   - [FileCache]: one file per entry under the user cache directory (CLI)
//   - [RedisCache]: shared cache for `hillchart serve`
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the cached value. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default TTLs.
const (
	ArtifactTTL = 7 * 24 * time.Hour
)

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key for a rendered artifact of a frame.
	ArtifactKey(frameHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the render options that change the artifact bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
}

// DefaultKeyer produces keys of the form "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	parts, _ := json.Marshal([]any{frameHash, opts})
	return "artifact:" + Hash(parts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache stores nothing. It backs --no-cache and artifact_cache = "none".
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

// Get always misses.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }
