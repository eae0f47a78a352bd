package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"timeplus/internal/marker"
)

// ShareParam is the query parameter carrying a shared marker list.
const ShareParam = "timeplus"

// ErrMalformedShare is returned when a share parameter cannot be decoded.
var ErrMalformedShare = errors.New("malformed share payload")

// Shared is the result of inspecting a page URL for a share parameter.
type Shared struct {
	Found    bool
	Markers  []marker.Marker
	CleanURL string
}

// EncodeShare packs markers into the compact share payload: the persisted
// JSON records in unpadded base64url.
func EncodeShare(markers []marker.Marker) (string, error) {
	records, err := EncodeRecords(markers)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString([]byte(records)), nil
}

// DecodeShare unpacks a share payload. Any element that fails to decode
// rejects the whole payload.
func DecodeShare(value string) ([]marker.Marker, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedShare)
	}
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(value, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedShare, err)
	}
	markers, skipped, err := DecodeRecords(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedShare, err)
	}
	if len(skipped) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMalformedShare, &skipped[0])
	}
	return markers, nil
}

// BaseURL strips query and fragment from a page URL.
func BaseURL(pageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// ShareURL embeds markers in the share parameter of the page's base URL.
func ShareURL(pageURL string, markers []marker.Marker) (string, error) {
	base, err := BaseURL(pageURL)
	if err != nil {
		return "", err
	}
	payload, err := EncodeShare(markers)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set(ShareParam, payload)
	return base + "?" + q.Encode(), nil
}

// ExtractShare looks for the share parameter on pageURL. CleanURL is always
// pageURL with the parameter removed, whether or not decoding succeeded.
func ExtractShare(pageURL string) (Shared, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return Shared{}, fmt.Errorf("parse page url: %w", err)
	}
	q := u.Query()
	value, found := q[ShareParam]
	if !found {
		return Shared{CleanURL: u.String()}, nil
	}
	q.Del(ShareParam)
	u.RawQuery = q.Encode()
	u.ForceQuery = false
	shared := Shared{Found: true, CleanURL: u.String()}

	if len(value) == 0 {
		return shared, fmt.Errorf("%w: empty", ErrMalformedShare)
	}
	markers, err := DecodeShare(value[0])
	if err != nil {
		return shared, err
	}
	shared.Markers = markers
	return shared, nil
}
