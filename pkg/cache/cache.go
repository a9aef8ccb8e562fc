// Package cache stores rendered artifacts and converted graphs so repeated
// renders of the same tree are served without running Graphviz again.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON envelope per key under a local directory (CLI)
//   - [RedisCache]: a shared Redis instance (the web server)
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys come from a [Keyer], so callers never build key strings by hand:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ArtifactKey(graphHash, cache.ArtifactKeyOpts{Format: "svg"})
//	data, ok, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired key is reported
	// as ok == false with a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	GraphTTL    = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)
