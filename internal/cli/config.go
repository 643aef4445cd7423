package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/session"
)

// Store and cache backends selectable in the config file.
const (
	backendMemory = "memory"
	backendFile   = "file"
	backendRedis  = "redis"
	backendMongo  = "mongo"
	backendSQLite = "sqlite"
	backendNone   = "none"
)

// Config is the optional TOML configuration file. Flags override it.
//
//	[layout.build]
//	horizontal_spacing = 200
//
//	[server]
//	addr = ":8080"
//	session_ttl = "12h"
//	store = "redis"
//
//	[redis]
//	addr = "localhost:6379"
type Config struct {
	Layout LayoutConfig        `toml:"layout"`
	Server ServerConfig        `toml:"server"`
	Cache  CacheConfig         `toml:"cache"`
	Redis  session.RedisConfig `toml:"redis"`
	Mongo  session.MongoConfig `toml:"mongo"`
}

// LayoutConfig overrides the build and reorganize spacing.
type LayoutConfig struct {
	Build      flow.Layout `toml:"build"`
	Reorganize flow.Layout `toml:"reorganize"`
}

// ServerConfig configures `jsonflow serve`.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	SessionTTL  duration `toml:"session_ttl"`
	MaxSessions int      `toml:"max_sessions"`
	Store       string   `toml:"store"`
	SessionDir  string   `toml:"session_dir"`
	SQLitePath  string   `toml:"sqlite_path"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	TTL     duration `toml:"ttl"`
}

// duration decodes Go duration strings such as "90m".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":8080",
			SessionTTL: duration{session.DefaultTTL},
			Store:      backendMemory,
		},
		Cache: CacheConfig{Backend: backendFile},
		Redis: session.RedisConfig{Addr: "localhost:6379"},
		Mongo: session.MongoConfig{URI: "mongodb://localhost:27017", Database: appName, Collection: "sessions"},
	}
}

// configPath returns $XDG_CONFIG_HOME/jsonflow/config.toml.
func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// loadConfig reads path on top of the defaults. An empty path selects the
// default location, where a missing file is not an error.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}
