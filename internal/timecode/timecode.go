// Package timecode formats and parses the colon-separated timestamps used by
// the text codec and by the comment feed.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalid is returned for timestamps that do not parse to a non-negative
// whole number of seconds.
var ErrInvalid = errors.New("invalid timestamp")

// Format renders seconds as MM:SS, or H:MM:SS once an hour is reached. The
// hour segment is not padded.
//
// Example:
//
//	Format(5)    // "00:05"
//	Format(754)  // "12:34"
//	Format(3723) // "1:02:03"
func Format(seconds int64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d:%02d", sign, m, s)
}

// Parse reads a timestamp by splitting on ":" and weighting segments from the
// right: seconds, minutes, hours, and further segments keep multiplying by 60.
// There is no cap on any segment, so "1:75" is 135 seconds.
func Parse(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalid)
	}
	return sum(strings.Split(text, ":"), text)
}

// ParseDisplayed reads a timestamp as shown next to a comment: MM:SS or
// H:MM:SS, most significant segment first. Minutes and seconds must be below
// 60 when a larger segment precedes them.
func ParseDisplayed(text string) (int64, error) {
	text = strings.TrimSpace(text)
	segments := strings.Split(text, ":")
	if len(segments) < 2 || len(segments) > 3 {
		return 0, fmt.Errorf("%w: %q is not MM:SS or H:MM:SS", ErrInvalid, text)
	}
	for i, seg := range segments[1:] {
		v, err := segment(seg, text)
		if err != nil {
			return 0, err
		}
		if v >= 60 {
			return 0, fmt.Errorf("%w: %q has segment %d out of range", ErrInvalid, text, i+2)
		}
	}
	return sum(segments, text)
}

// sum weights segments (most significant first) by powers of 60.
func sum(segments []string, text string) (int64, error) {
	var total int64
	var weight int64 = 1
	for i := len(segments) - 1; i >= 0; i-- {
		v, err := segment(segments[i], text)
		if err != nil {
			return 0, err
		}
		if v != 0 {
			if weight > math.MaxInt64/v {
				return 0, fmt.Errorf("%w: %q overflows", ErrInvalid, text)
			}
			add := v * weight
			if total > math.MaxInt64-add {
				return 0, fmt.Errorf("%w: %q overflows", ErrInvalid, text)
			}
			total += add
		}
		if i > 0 {
			if weight > math.MaxInt64/60 {
				// Remaining segments can only contribute if they are zero.
				for _, rest := range segments[:i] {
					rv, err := segment(rest, text)
					if err != nil {
						return 0, err
					}
					if rv != 0 {
						return 0, fmt.Errorf("%w: %q overflows", ErrInvalid, text)
					}
				}
				return total, nil
			}
			weight *= 60
		}
	}
	return total, nil
}

func segment(seg, text string) (int64, error) {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return 0, fmt.Errorf("%w: %q has an empty segment", ErrInvalid, text)
	}
	var v int64
	for _, r := range seg {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalid, text)
		}
		d := int64(r - '0')
		if v > (math.MaxInt64-d)/10 {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalid, text)
		}
		v = v*10 + d
	}
	return v, nil
}
