// Package config loads application settings.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. built-in defaults ([Default])
//  2. a TOML file (--config, or config.toml in the user config directory)
//  3. a .env file in the working directory
//  4. environment variables
//  5. command-line flags, applied by the CLI
//
// A minimal config.toml:
//
//	data = "data/participants.csv"
//	addr = ":8050"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/cancerflow/pkg/cache"
	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
)

// DefaultAddr is the dashboard listen address.
const DefaultAddr = ":8050"

// Environment variables read by [ApplyEnv].
const (
	EnvData     = "CANCERFLOW_DATA"
	EnvAddr     = "CANCERFLOW_ADDR"
	EnvPort     = "PORT"
	EnvCache    = "CANCERFLOW_CACHE"
	EnvCacheDir = "CANCERFLOW_CACHE_DIR"
	EnvRedisURL = "REDIS_URL"
	EnvMongoURI = "MONGO_URI"
)

// Config holds application settings.
type Config struct {
	// Data is the participants CSV.
	Data string `toml:"data"`

	// Addr is the dashboard listen address.
	Addr string `toml:"addr"`

	Cache cache.Config `toml:"cache"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:  DefaultAddr,
		Cache: cache.Config{Backend: cache.BackendMemory},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "cancerflow", "config.toml"), nil
}

// Load builds a Config from defaults, the TOML file at path, a .env file
// and the environment. An empty path reads the default file if it exists;
// an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		err := decodeFile(path, &cfg)
		switch {
		case err == nil:
		case !explicit && errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, err
		}
	}

	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	ApplyEnv(&cfg, os.Getenv)
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return err
		}
		return cferrors.Wrap(cferrors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	return nil
}

// LoadDotEnv loads variables from .env files into the process environment
// without overriding variables that are already set. Missing files are
// ignored. With no arguments it reads ./.env.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with the non-empty variables returned by getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if v := get(EnvData); v != "" {
		cfg.Data = v
	}
	if v := get(EnvPort); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		cfg.Addr = v
	}
	if v := get(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := get(EnvCache); v != "" {
		cfg.Cache.Backend = v
	}
	if v := get(EnvCacheDir); v != "" {
		cfg.Cache.Dir = v
	}
	if v := get(EnvRedisURL); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := get(EnvMongoURI); v != "" {
		cfg.Cache.MongoURI = v
	}
}

// Validate checks settings that can be checked without touching the
// network.
func (c Config) Validate() error {
	if c.Data != "" {
		if err := cferrors.ValidateDataPath(c.Data); err != nil {
			return err
		}
	}
	if c.Addr == "" {
		return cferrors.New(cferrors.ErrCodeInvalidInput, "listen address is empty")
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendMongo:
		return nil
	default:
		return cferrors.New(cferrors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
}

// Save writes cfg as TOML to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
