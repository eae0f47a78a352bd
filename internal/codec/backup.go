package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedBackup is returned when a backup blob cannot be restored.
var ErrMalformedBackup = errors.New("malformed backup")

// EncodeBackup serializes key/raw-text pairs as one JSON object with keys in
// sorted order.
func EncodeBackup(entries map[string]string) (string, error) {
	if entries == nil {
		entries = map[string]string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return "", fmt.Errorf("marshal backup: %w", err)
	}
	return buf.String(), nil
}

// DecodeBackup parses a backup blob. Every key must start with prefix and
// every value must be a string; otherwise the blob is rejected as a whole.
func DecodeBackup(blob, prefix string) (map[string]string, error) {
	var entries map[string]string
	if err := json.Unmarshal([]byte(blob), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}
	if entries == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedBackup)
	}
	var foreign []string
	for key := range entries {
		if !strings.HasPrefix(key, prefix) {
			foreign = append(foreign, key)
		}
	}
	if len(foreign) > 0 {
		sort.Strings(foreign)
		return nil, fmt.Errorf("%w: keys outside prefix %q: %s", ErrMalformedBackup, prefix, strings.Join(foreign, ", "))
	}
	return entries, nil
}
