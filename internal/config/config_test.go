package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"timeplus/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TIMEPLUS_POSTGRES_DSN", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "timeplus")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Storage.Path != filepath.Join(wantState, "timeplus.db") {
		t.Fatalf("unexpected storage path: %q", cfg.Storage.Path)
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		t.Fatalf("unexpected backend: %q", cfg.Storage.Backend)
	}
	if cfg.Storage.KeyPrefix != "nicoplus_timeplus_" {
		t.Fatalf("unexpected key prefix: %q", cfg.Storage.KeyPrefix)
	}
	if cfg.RepeatInterval() != 100*time.Millisecond {
		t.Fatalf("unexpected repeat interval: %s", cfg.RepeatInterval())
	}
	if cfg.AutoAdd.Glyph != "★" {
		t.Fatalf("unexpected glyph: %q", cfg.AutoAdd.Glyph)
	}
	if cfg.AutoAdd.OffsetSeconds != 1 {
		t.Fatalf("unexpected offset: %d", cfg.AutoAdd.OffsetSeconds)
	}
	if cfg.LockPath() != filepath.Join(wantState, "timeplus.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TIMEPLUS_POSTGRES_DSN", "")

	configPath := filepath.Join(tempHome, "config.toml")
	payload := struct {
		Paths struct {
			StateDir string `toml:"state_dir"`
		} `toml:"paths"`
		Storage struct {
			Backend   string `toml:"backend"`
			KeyPrefix string `toml:"key_prefix"`
		} `toml:"storage"`
		Repeat struct {
			IntervalMS int `toml:"interval_ms"`
		} `toml:"repeat"`
		AutoAdd struct {
			ScanIntervalSeconds int    `toml:"scan_interval_seconds"`
			Glyph               string `toml:"glyph"`
		} `toml:"auto_add"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}{}
	payload.Paths.StateDir = "~/state"
	payload.Storage.Backend = " Memory "
	payload.Storage.KeyPrefix = "custom_"
	payload.Repeat.IntervalMS = 250
	payload.AutoAdd.ScanIntervalSeconds = 30
	payload.AutoAdd.Glyph = "☆"
	payload.Logging.Format = "JSON"
	payload.Logging.Level = "Debug"

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, "state") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if cfg.Storage.Backend != config.BackendMemory {
		t.Fatalf("expected memory backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.KeyPrefix != "custom_" {
		t.Fatalf("unexpected key prefix: %q", cfg.Storage.KeyPrefix)
	}
	if cfg.RepeatInterval() != 250*time.Millisecond {
		t.Fatalf("unexpected repeat interval: %s", cfg.RepeatInterval())
	}
	if cfg.ScanInterval() != 30*time.Second {
		t.Fatalf("unexpected scan interval: %s", cfg.ScanInterval())
	}
	if cfg.AutoAdd.Glyph != "☆" {
		t.Fatalf("unexpected glyph: %q", cfg.AutoAdd.Glyph)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased logging settings, got %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[storage]\nbakend = \"sqlite\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestPostgresDSNFallsBackToEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("TIMEPLUS_POSTGRES_DSN", "host=db user=timeplus")
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[storage]\nbackend = \"postgres\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.DSN != "host=db user=timeplus" {
		t.Fatalf("expected DSN from env, got %q", cfg.Storage.DSN)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"postgres dsn", func(c *config.Config) { c.Storage.Backend = config.BackendPostgres; c.Storage.DSN = "" }, "storage.dsn"},
		{"key prefix", func(c *config.Config) { c.Storage.KeyPrefix = "" }, "storage.key_prefix"},
		{"repeat interval", func(c *config.Config) { c.Repeat.IntervalMS = 0 }, "repeat.interval_ms"},
		{"scan interval", func(c *config.Config) { c.AutoAdd.ScanIntervalSeconds = -1 }, "auto_add.scan_interval_seconds"},
		{"offset", func(c *config.Config) { c.AutoAdd.OffsetSeconds = -2 }, "auto_add.offset_seconds"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("TIMEPLUS_POSTGRES_DSN", "")
	configPath := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(configPath); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		t.Fatalf("unexpected sample backend: %q", cfg.Storage.Backend)
	}
}

func TestEnsureDirectoriesCreatesStateDir(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(dir, "state")
	cfg.Storage.Path = filepath.Join(dir, "db", "timeplus.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, want := range []string{cfg.Paths.StateDir, filepath.Join(dir, "db")} {
		info, err := os.Stat(want)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", want, err)
		}
	}
}
