// Package config loads reasontree settings from a TOML file.
//
// The file is optional. When present it lives at
// $XDG_CONFIG_HOME/reasontree/config.toml (or ~/.config/reasontree/config.toml)
// unless a path is given explicitly:
//
//	[server]
//	addr = "127.0.0.1:8080"
//	session_ttl = "2h"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[view.colors]
//	reasoning = "#10b981"
//	plain = "#667eea"
//
// Fields missing from the file keep their defaults. Command-line flags are
// applied on top by the CLI.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	rterrors "github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/view"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the complete settings tree.
type Config struct {
	Server    Server       `toml:"server"`
	Cache     Cache        `toml:"cache"`
	View      view.Options `toml:"view"`
	Reasoning Reasoning    `toml:"reasoning"`
}

// Server configures `reasontree serve`.
type Server struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	SessionTTL   time.Duration `toml:"session_ttl"`
	MaxUpload    int64         `toml:"max_upload"`
}

// Cache selects and configures the artifact cache.
type Cache struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	Prefix        string        `toml:"prefix"`
	TTL           time.Duration `toml:"ttl"`
}

// Reasoning configures `reasontree grow`.
type Reasoning struct {
	SnapshotDir   string `toml:"snapshot_dir"`
	MaxIterations int    `toml:"max_iterations"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			SessionTTL:   2 * time.Hour,
			MaxUpload:    8 << 20,
		},
		Cache: Cache{
			Backend: BackendFile,
			Dir:     DefaultCacheDir(),
			Prefix:  "reasontree:",
			TTL:     24 * time.Hour,
		},
		View: view.DefaultOptions(),
		Reasoning: Reasoning{
			SnapshotDir:   "tree_snapshots",
			MaxIterations: 20,
		},
	}
}

// Path returns the default config file location.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "reasontree", "config.toml")
}

// DefaultCacheDir returns the per-user cache directory for rendered output.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "reasontree")
	}
	return filepath.Join(dir, "reasontree")
}

// Load reads the file at path over the defaults. An empty path means
// [Path]; a missing file at the default location is not an error, but a
// missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
		if path == "" {
			return cfg, nil
		}
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return cfg, rterrors.Wrap(rterrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, rterrors.Wrap(rterrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, rterrors.New(rterrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}

	cfg.View.SetDefaults()
	return cfg, cfg.Validate()
}

// Validate checks every section.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return rterrors.New(rterrors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return rterrors.New(rterrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Server.Addr == "" {
		return rterrors.New(rterrors.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.SessionTTL < 0 || c.Cache.TTL < 0 {
		return rterrors.New(rterrors.ErrCodeInvalidConfig, "durations must not be negative")
	}
	if c.Reasoning.MaxIterations < 0 {
		return rterrors.New(rterrors.ErrCodeInvalidConfig, "reasoning.max_iterations must not be negative")
	}
	return c.View.Validate()
}
