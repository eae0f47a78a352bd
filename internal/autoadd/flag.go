package autoadd

import (
	"context"
	"fmt"
	"strconv"

	"timeplus/internal/kvstore"
)

// FlagSuffix is appended to the key prefix to form the enabled-flag key.
const FlagSuffix = "auto_add_enabled"

// FlagKey returns the persistence key of the enabled flag.
func FlagKey(prefix string) string {
	return prefix + FlagSuffix
}

// LoadEnabled reads the flag. A missing or unreadable value means disabled.
func LoadEnabled(ctx context.Context, kv kvstore.Store, key string) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load auto-add flag: %w", err)
	}
	if !ok {
		return false, nil
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return enabled, nil
}

// SaveEnabled writes the flag as "true" or "false".
func SaveEnabled(ctx context.Context, kv kvstore.Store, key string, enabled bool) error {
	if err := kv.Set(ctx, key, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("save auto-add flag: %w", err)
	}
	return nil
}
