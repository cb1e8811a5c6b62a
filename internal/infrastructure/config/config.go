package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cespare/xxhash/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DefaultPath        = "folio.toml"
	DefaultStorageURL  = "folio.db"
	DefaultUser        = "you"
	DefaultRedisPrefix = "folio"
)

type Config struct {
	App struct {
		LogLevel    string `toml:"log_level"`
		DefaultUser string `toml:"default_user"`
	} `toml:"app"`

	Storage struct {
		URL string `toml:"url"`

		Redis struct {
			Enabled    bool   `toml:"enabled"`
			Addr       string `toml:"addr"`
			Password   string `toml:"password"`
			DB         int    `toml:"db"`
			Prefix     string `toml:"prefix"`
			TTLSeconds int    `toml:"ttl_seconds"`
		} `toml:"redis"`
	} `toml:"storage"`
}

// Load reads path, then applies .env and environment overrides. Only the
// default path may be missing; defaults apply then.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		if err != nil && !(errors.Is(err, fs.ErrNotExist) && path == DefaultPath) {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RedisTTL is zero when keys never expire.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Storage.Redis.TTLSeconds) * time.Second
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.Storage.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("FOLIO_LOG_LEVEL")); v != "" {
		cfg.App.LogLevel = v
	}
}

func applyDefaults(cfg *Config) {
	cfg.App.LogLevel = strings.ToLower(strings.TrimSpace(cfg.App.LogLevel))
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	cfg.App.DefaultUser = strings.TrimSpace(cfg.App.DefaultUser)
	if cfg.App.DefaultUser == "" {
		cfg.App.DefaultUser = DefaultUser
	}
	cfg.Storage.URL = strings.TrimSpace(cfg.Storage.URL)
	if cfg.Storage.URL == "" {
		cfg.Storage.URL = DefaultStorageURL
	}
	cfg.Storage.Redis.Prefix = strings.TrimSpace(cfg.Storage.Redis.Prefix)
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = RedisPrefixFor(cfg.Storage.URL)
	}
}

// RedisPrefixFor derives a cache namespace from the storage URL so ledgers
// sharing one redis never read each other's prices.
func RedisPrefixFor(storageURL string) string {
	return fmt.Sprintf("%s:%016x", DefaultRedisPrefix, xxhash.Sum64String(storageURL))
}

func validate(cfg *Config) error {
	if _, err := zerolog.ParseLevel(cfg.App.LogLevel); err != nil {
		return fmt.Errorf("app.log_level %q: %w", cfg.App.LogLevel, err)
	}
	r := cfg.Storage.Redis
	if r.Enabled && strings.TrimSpace(r.Addr) == "" {
		return errors.New("storage.redis.addr empty but enabled")
	}
	if r.DB < 0 {
		return errors.New("storage.redis.db must be >= 0")
	}
	if r.TTLSeconds < 0 {
		return errors.New("storage.redis.ttl_seconds must be >= 0")
	}
	return nil
}
