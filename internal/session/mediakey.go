package session

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"timeplus/internal/autoadd"
)

// ErrNoMediaKey is returned when a page URL has no usable path segment.
var ErrNoMediaKey = errors.New("session: page url has no media key")

// MediaKey derives the media item key from a page URL: the last non-empty
// path segment, ignoring query and fragment.
func MediaKey(pageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.TrimSpace(segments[i])
		if seg == "" {
			continue
		}
		if seg == autoadd.FlagSuffix {
			return "", fmt.Errorf("%w: %q is reserved", ErrNoMediaKey, seg)
		}
		return seg, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoMediaKey, pageURL)
}
