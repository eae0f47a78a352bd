// Package config loads, normalizes, and validates timeplus configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TIMEPLUS_POSTGRES_DSN. The Config type centralizes every knob the CLI and
// the session controller need: storage backend, key prefix, repeat loop
// period, and the auto-add scanner settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
