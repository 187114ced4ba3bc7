package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend string `toml:"backend"`

	// Dir is the FileCache directory. Empty means [DefaultDir].
	Dir string `toml:"dir"`

	// Size is the MemoryCache entry limit.
	Size int `toml:"size"`

	RedisURL string `toml:"redis_url"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Open creates the backend named by cfg.Backend. An empty name means
// [BackendMemory].
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewFileCache(dir)
	case "", BackendMemory:
		return NewMemoryCache(cfg.Size)
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis backend requires a redis url")
		}
		return NewRedisCache(ctx, cfg.RedisURL)
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo backend requires a mongo uri")
		}
		return NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// DefaultDir returns the per-user cache directory, e.g. ~/.cache/cancerflow.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(base, "cancerflow"), nil
}
