// Package config loads gutterview settings from a TOML file and the
// environment.
//
// Values are resolved in three steps: built-in defaults, then the TOML file
// (if any), then GUTTERVIEW_* environment variables. The result is clamped
// into valid ranges by [Config.Normalize].
//
//	[solver]
//	batch_size = 8
//	plateau = "10s"
//
//	[layout]
//	width = 1400
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
// The same cache backend can be selected with GUTTERVIEW_CACHE_BACKEND=redis.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"

	"github.com/matzehuels/gutterview/pkg/cache"
	errs "github.com/matzehuels/gutterview/pkg/errors"
	"github.com/matzehuels/gutterview/pkg/layout"
	"github.com/matzehuels/gutterview/pkg/solver"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "GUTTERVIEW_"

// Config is the complete application configuration.
type Config struct {
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`

	Solver Solver `toml:"solver" envPrefix:"SOLVER_"`
	Layout Layout `toml:"layout" envPrefix:"LAYOUT_"`
	Cache  Cache  `toml:"cache" envPrefix:"CACHE_"`
	Server Server `toml:"server" envPrefix:"SERVER_"`
	Store  Store  `toml:"store" envPrefix:"STORE_"`
}

// Solver tunes the order search.
type Solver struct {
	solver.Config

	// AutoBatch sizes the chain count from the graph when BatchSize is 0.
	AutoBatch bool          `toml:"auto_batch" env:"AUTO_BATCH"`
	Plateau   time.Duration `toml:"plateau" env:"PLATEAU"`
	Timeout   time.Duration `toml:"timeout" env:"TIMEOUT"`
}

// Layout sets the canvas and tile metrics.
type Layout struct {
	layout.Params

	Width   float64 `toml:"width" env:"WIDTH"`
	Columns int     `toml:"columns" env:"COLUMNS"` // 0 = derive from width
}

// Cache selects the cache backend.
type Cache struct {
	cache.Options
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `toml:"addr" env:"ADDR"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `toml:"max_body_bytes" env:"MAX_BODY_BYTES"`
}

// Store configures the run history database. An empty URI keeps runs in memory.
type Store struct {
	MongoURI   string `toml:"mongo_uri" env:"MONGO_URI"`
	Database   string `toml:"database" env:"DATABASE"`
	Collection string `toml:"collection" env:"COLLECTION"`
}

// Default returns the built-in configuration.
func Default() Config {
	sc := solver.DefaultConfig()
	sc.BatchSize = 0
	return Config{
		LogLevel: "info",
		Solver: Solver{
			Config:    sc,
			AutoBatch: true,
			Plateau:   solver.DefaultPlateau,
			Timeout:   time.Minute,
		},
		Layout: Layout{
			Params: layout.DefaultParams(),
			Width:  1400,
		},
		Cache: Cache{Options: cache.Options{Backend: cache.BackendFile}},
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    8 << 20,
		},
		Store: Store{
			Database:   "gutterview",
			Collection: "runs",
		},
	}
}

// Load returns the configuration from path (optional) and the environment.
// A missing file is not an error when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := errs.ValidatePath(path); err != nil {
			return Config{}, err
		}
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return Config{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse config %s", path)
		}
	}
	if err := ApplyEnv(&cfg, os.Environ()); err != nil {
		return Config{}, err
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with GUTTERVIEW_* variables from environ
// (KEY=VALUE pairs, as returned by os.Environ).
func ApplyEnv(cfg *Config, environ []string) error {
	vars := make(map[string]string)
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			vars[k] = v
		}
	}
	opts := env.Options{Prefix: EnvPrefix, Environment: vars}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidOptions, err, "environment")
	}
	return nil
}

// Normalize clamps every section into range.
func (c Config) Normalize() Config {
	batch := c.Solver.BatchSize
	c.Solver.Config = c.Solver.Config.Normalize()
	c.Solver.BatchSize = batch
	if c.Solver.Plateau <= 0 {
		c.Solver.Plateau = solver.DefaultPlateau
	}
	c.Layout.Params = c.Layout.Params.WithDefaults()
	if c.Layout.Width <= 0 {
		c.Layout.Width = Default().Layout.Width
	}
	c.Layout.Columns = max(c.Layout.Columns, 0)
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = Default().Server.ShutdownTimeout
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = Default().Server.MaxBodyBytes
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	return c
}

// Validate reports settings that cannot be clamped.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return errs.New(errs.ErrCodeInvalidOptions, "unknown log level %q", c.LogLevel)
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errs.New(errs.ErrCodeInvalidOptions, "unknown cache backend %q", c.Cache.Backend)
	}
	if err := errs.ValidateRange("batch size", c.Solver.BatchSize, 0, solver.MaxBatchSize); err != nil {
		return err
	}
	if c.Store.MongoURI != "" && c.Store.Database == "" {
		return errs.New(errs.ErrCodeInvalidOptions, "store database is required with a mongo uri")
	}
	return nil
}

// SolverConfig returns the solver tuning for a graph with n nodes.
// With AutoBatch and no explicit BatchSize the chain count is derived from n.
func (c Config) SolverConfig(n int) solver.Config {
	sc := c.Solver.Config
	if sc.BatchSize == 0 && c.Solver.AutoBatch {
		sc.BatchSize = solver.BatchSizeFor(n)
	}
	return sc
}

// String renders the configuration as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
