package testsupport

import (
	"context"
	"errors"
	"sync"
	"testing"

	"timeplus/internal/config"
	"timeplus/internal/kvstore"
)

// ErrInjected is returned by FailingStore writes while failure is enabled.
var ErrInjected = errors.New("injected store failure")

// MustOpenStore opens the backend selected by cfg and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) kvstore.Store {
	t.Helper()

	store, err := kvstore.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// FailingStore wraps a Store and fails writes on demand.
type FailingStore struct {
	kvstore.Store

	mu     sync.Mutex
	fail   bool
	writes int
}

// NewFailingStore wraps inner, or a fresh in-memory store when inner is nil.
func NewFailingStore(inner kvstore.Store) *FailingStore {
	if inner == nil {
		inner = kvstore.NewMemory()
	}
	return &FailingStore{Store: inner}
}

// FailWrites toggles write failures.
func (f *FailingStore) FailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

// Writes reports how many writes reached the wrapped store.
func (f *FailingStore) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FailingStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	if f.fail {
		f.mu.Unlock()
		return ErrInjected
	}
	f.writes++
	f.mu.Unlock()
	return f.Store.Set(ctx, key, value)
}

func (f *FailingStore) SetMany(ctx context.Context, entries map[string]string) error {
	f.mu.Lock()
	if f.fail {
		f.mu.Unlock()
		return ErrInjected
	}
	f.writes++
	f.mu.Unlock()
	return f.Store.SetMany(ctx, entries)
}
