package session

import (
	"context"
	"fmt"

	"timeplus/internal/codec"
	"timeplus/internal/kvstore"
)

// Backup exports every persisted value under prefix as one blob.
func Backup(ctx context.Context, kv kvstore.Store, prefix string) (string, error) {
	entries, err := kvstore.Snapshot(ctx, kv, prefix)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	return codec.EncodeBackup(entries)
}

// Restore writes every entry of blob in one batch. A malformed blob or a key
// outside prefix writes nothing. It returns the number of keys restored.
func Restore(ctx context.Context, kv kvstore.Store, prefix, blob string) (int, error) {
	entries, err := codec.DecodeBackup(blob, prefix)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := kv.SetMany(ctx, entries); err != nil {
		return 0, fmt.Errorf("restore: %w", err)
	}
	return len(entries), nil
}
