package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"timeplus/internal/marker"
)

// ElementError describes a persisted element that could not be read.
type ElementError struct {
	Index int
	Raw   string
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("record %d (%s): %v", e.Index, e.Raw, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

type record struct {
	Time json.RawMessage `json:"time"`
	Memo *string         `json:"memo"`
}

// EncodeRecords serializes markers as a JSON array. A nil memo is omitted.
func EncodeRecords(markers []marker.Marker) (string, error) {
	if markers == nil {
		markers = []marker.Marker{}
	}
	data, err := json.Marshal(markers)
	if err != nil {
		return "", fmt.Errorf("marshal markers: %w", err)
	}
	return string(data), nil
}

// DecodeRecords parses a persisted marker list. Objects and legacy bare
// integers are both accepted; the result is sorted with unique times.
// Elements that cannot be read are skipped and reported; only a document that
// is not a JSON array fails as a whole.
func DecodeRecords(text string) ([]marker.Marker, []ElementError, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 {
		return []marker.Marker{}, nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse marker records: %w", err)
	}

	out := make([]marker.Marker, 0, len(raw))
	var skipped []ElementError
	for idx, elem := range raw {
		m, err := decodeElement(elem)
		if err != nil {
			skipped = append(skipped, ElementError{Index: idx, Raw: string(elem), Err: err})
			continue
		}
		out = append(out, m)
	}
	return marker.Normalize(out), skipped, nil
}

func decodeElement(elem json.RawMessage) (marker.Marker, error) {
	elem = bytes.TrimSpace(elem)
	if len(elem) == 0 {
		return marker.Marker{}, fmt.Errorf("empty element")
	}

	if elem[0] == '{' {
		var rec record
		if err := json.Unmarshal(elem, &rec); err != nil {
			return marker.Marker{}, err
		}
		if len(rec.Time) == 0 {
			return marker.Marker{}, fmt.Errorf("missing time")
		}
		t, err := parseTime(rec.Time)
		if err != nil {
			return marker.Marker{}, err
		}
		return marker.New(t, rec.Memo), nil
	}

	// Legacy lists stored bare integers.
	t, err := parseTime(elem)
	if err != nil {
		return marker.Marker{}, err
	}
	return marker.Marker{Time: t}, nil
}

// parseTime accepts only an unquoted JSON integer.
func parseTime(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	t, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("time %s is not a whole number of seconds", raw)
	}
	if !marker.ValidTime(t) {
		return 0, fmt.Errorf("time %d is negative", t)
	}
	return t, nil
}
