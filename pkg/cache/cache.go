// Package cache stores computed orders and diagrams between runs.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the HTTP server and [NullCache] when caching is disabled. Keys come
// from a [Keyer] so that every consumer derives the same key for the same
// inputs.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
// Get reports a miss with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry lifetimes.
const (
	// TTLOrder keeps solved orders for a week. Solving is the expensive step.
	TTLOrder = 7 * 24 * time.Hour

	// TTLDiagram keeps routed diagrams for a day.
	TTLDiagram = 24 * time.Hour
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string `json:"backend" toml:"backend" env:"BACKEND"`
	Dir       string `json:"dir" toml:"dir" env:"DIR"`
	RedisAddr string `json:"redis_addr" toml:"redis_addr" env:"REDIS_ADDR"`
	RedisDB   int    `json:"redis_db" toml:"redis_db" env:"REDIS_DB"`
	Prefix    string `json:"prefix" toml:"prefix" env:"PREFIX"`
}

// Open returns the backend named by opts.Backend. An empty backend means
// a file cache when Dir is set and no cache otherwise.
func Open(ctx context.Context, opts Options) (Cache, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = BackendNone
		if opts.Dir != "" {
			backend = BackendFile
		}
	}

	switch backend {
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache requires a directory")
		}
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, RedisOptions{Addr: opts.RedisAddr, DB: opts.RedisDB})
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
