package testsupport

import (
	"path/filepath"
	"testing"

	"timeplus/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The SQLite backend is used unless an option changes it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Storage.Path = filepath.Join(base, "state", "timeplus.db")
	cfgVal.Repeat.IntervalMS = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMemoryBackend switches the test config to the in-memory store.
func WithMemoryBackend() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = config.BackendMemory
	}
}

// WithKeyPrefix overrides the persistence key prefix.
func WithKeyPrefix(prefix string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.KeyPrefix = prefix
	}
}

// WithGlyph overrides the auto-add marker glyph.
func WithGlyph(glyph string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AutoAdd.Glyph = glyph
	}
}
