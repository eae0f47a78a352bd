package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeAutoAdd()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultBackend
	}

	var err error
	c.Storage.Path = strings.TrimSpace(c.Storage.Path)
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.Paths.StateDir, "timeplus.db")
	}
	if c.Storage.Path, err = expandPath(c.Storage.Path); err != nil {
		return fmt.Errorf("storage.path: %w", err)
	}

	c.Storage.DSN = strings.TrimSpace(c.Storage.DSN)
	if c.Storage.DSN == "" {
		if value, ok := os.LookupEnv("TIMEPLUS_POSTGRES_DSN"); ok {
			c.Storage.DSN = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeAutoAdd() {
	c.AutoAdd.Glyph = strings.TrimSpace(c.AutoAdd.Glyph)
	if c.AutoAdd.Glyph == "" {
		c.AutoAdd.Glyph = defaultGlyph
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
