package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"timeplus/internal/config"
	"timeplus/internal/logging"
)

// ErrClosed is returned by every operation on a closed store.
var ErrClosed = errors.New("kvstore: store closed")

// Store is the persistence capability used by the bookmark store and the
// backup command.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// SetMany writes all entries atomically: either every entry is stored or none is.
	SetMany(ctx context.Context, entries map[string]string) error
	// Keys lists the keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Open constructs the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg == nil {
		return nil, errors.New("kvstore: config is required")
	}
	logger = logging.NewComponentLogger(logger, "kvstore")
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Debug("using in-memory store")
		return NewMemory(), nil
	case config.BackendPostgres:
		store, err := OpenPostgres(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		logger.Debug("connected to postgres store")
		return store, nil
	case config.BackendSQLite, "":
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		store, err := OpenSQLite(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug("opened sqlite store", logging.String("path", cfg.Storage.Path))
		return store, nil
	default:
		return nil, fmt.Errorf("kvstore: unsupported backend %q", cfg.Storage.Backend)
	}
}

// Snapshot returns every key/value pair under prefix.
func Snapshot(ctx context.Context, store Store, prefix string) (map[string]string, error) {
	keys, err := store.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		value, ok, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("get %q: %w", key, err)
		}
		if ok {
			out[key] = value
		}
	}
	return out, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
