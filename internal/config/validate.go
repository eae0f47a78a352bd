package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateRepeat(); err != nil {
		return err
	}
	if err := c.validateAutoAdd(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn must be set when storage.backend is postgres (or export TIMEPLUS_POSTGRES_DSN)")
		}
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (want sqlite, postgres, or memory)", c.Storage.Backend)
	}
	if c.Storage.KeyPrefix == "" {
		return errors.New("storage.key_prefix must be set")
	}
	return nil
}

func (c *Config) validateRepeat() error {
	if c.Repeat.IntervalMS <= 0 {
		return errors.New("repeat.interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateAutoAdd() error {
	if c.AutoAdd.ScanIntervalSeconds <= 0 {
		return errors.New("auto_add.scan_interval_seconds must be positive")
	}
	if c.AutoAdd.OffsetSeconds < 0 {
		return errors.New("auto_add.offset_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
