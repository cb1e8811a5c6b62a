package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "folio.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FOLIO_LOG_LEVEL", "")
	t.Chdir(t.TempDir())

	cfg, err := Load(DefaultPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.URL != DefaultStorageURL {
		t.Errorf("expected url %s, got %s", DefaultStorageURL, cfg.Storage.URL)
	}
	if cfg.App.LogLevel != "info" || cfg.App.DefaultUser != DefaultUser {
		t.Errorf("unexpected app defaults: %+v", cfg.App)
	}
	if cfg.Storage.Redis.Enabled || cfg.Storage.Redis.Prefix != RedisPrefixFor(DefaultStorageURL) {
		t.Errorf("unexpected redis defaults: %+v", cfg.Storage.Redis)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FOLIO_LOG_LEVEL", "")

	_, err := Load(filepath.Join(t.TempDir(), "folio.tmol"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error for a mistyped -config path, got %v", err)
	}
}

func TestRedisPrefixPerStorage(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FOLIO_LOG_LEVEL", "")

	a, err := Load(writeConfig(t, "[storage]\nurl = \"a.db\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	b, err := Load(writeConfig(t, "[storage]\nurl = \"b.db\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if a.Storage.Redis.Prefix == b.Storage.Redis.Prefix {
		t.Errorf("different databases share redis prefix %s", a.Storage.Redis.Prefix)
	}
	if !strings.HasPrefix(a.Storage.Redis.Prefix, DefaultRedisPrefix+":") || a.Storage.Redis.Prefix != RedisPrefixFor("a.db") {
		t.Errorf("unexpected derived prefix %s", a.Storage.Redis.Prefix)
	}

	c, err := Load(writeConfig(t, "[storage]\nurl = \"a.db\"\n\n[storage.redis]\nprefix = \"mine\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Storage.Redis.Prefix != "mine" {
		t.Errorf("explicit prefix should be kept, got %s", c.Storage.Redis.Prefix)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[app]
log_level = "warn"
default_user = "alice"

[storage]
url = "data/ledger.db"

[storage.redis]
enabled = true
addr = "localhost:6379"
db = 2
ttl_seconds = 60
`)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/folio")
	t.Setenv("FOLIO_LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.URL != "postgres://u:p@localhost/folio" {
		t.Errorf("DATABASE_URL should override storage.url, got %s", cfg.Storage.URL)
	}
	if cfg.App.LogLevel != "debug" {
		t.Errorf("FOLIO_LOG_LEVEL should override log_level, got %s", cfg.App.LogLevel)
	}
	if cfg.App.DefaultUser != "alice" {
		t.Errorf("expected default_user alice, got %s", cfg.App.DefaultUser)
	}
	if cfg.Storage.Redis.DB != 2 || cfg.RedisTTL() != time.Minute {
		t.Errorf("unexpected redis settings: %+v", cfg.Storage.Redis)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FOLIO_LOG_LEVEL", "")

	tests := []struct {
		name string
		body string
	}{
		{"bad level", "[app]\nlog_level = \"loud\"\n"},
		{"redis without addr", "[storage.redis]\nenabled = true\n"},
		{"negative ttl", "[storage.redis]\nttl_seconds = -1\n"},
		{"malformed toml", "[app\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}
