// Package cache provides the caching layer for rendered mystery graphs.
//
// Graphviz layout is the slow part of a pipeline run, so layouts and
// rendered artifacts are cached by the content hash of the source document.
// Validation and derivation are cheap and always recomputed.
//
// # Backends
//
//   - [NullCache]: never stores anything (--no-cache, tests)
//   - [FileCache]: one JSON file per entry under the user cache directory (CLI)
//   - [RedisCache]: shared cache for the HTTP API
//
// # Keys
//
// A [Keyer] turns a document hash plus render options into a cache key.
// [ScopedKeyer] prefixes every key for namespace isolation.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default TTLs per entry type.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// A miss is reported as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts are the options that change a layout.
type LayoutKeyOpts struct {
	Engine   string  `json:"engine"`
	Detailed bool    `json:"detailed"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	LayoutKey(documentHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns the key for the layout of a document.
func (DefaultKeyer) LayoutKey(documentHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", documentHash, opts)
}

// ArtifactKey returns the key for one rendered format of a layout.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
