package session

import (
	"encoding/json"
	"time"

	"timeplus/internal/marker"
	"timeplus/internal/repeat"
)

// Snapshot is a read-only projection of session state for diagnostics.
type Snapshot struct {
	SessionID  string          `json:"session_id"`
	MediaKey   string          `json:"media_key"`
	StorageKey string          `json:"storage_key"`
	PageURL    string          `json:"page_url"`
	AttachedAt time.Time       `json:"attached_at"`
	Detached   bool            `json:"detached"`
	Markers    []marker.Marker `json:"markers"`
	Repeat     RepeatSnapshot  `json:"repeat"`
	AutoAdd    AutoAddSnapshot `json:"auto_add"`
}

// RepeatSnapshot captures the repeat controller.
type RepeatSnapshot struct {
	State repeat.State `json:"state"`
	repeat.Range
}

// AutoAddSnapshot captures the comment scanner.
type AutoAddSnapshot struct {
	Enabled  bool   `json:"enabled"`
	HasFeed  bool   `json:"has_feed"`
	Scanning bool   `json:"scanning"`
	Interval string `json:"interval,omitempty"`
}

// Snapshot works on detached sessions too; it never mutates anything.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:  s.id,
		MediaKey:   s.mediaKey,
		StorageKey: s.store.Key(),
		PageURL:    s.pageURL,
		AttachedAt: s.attachedAt,
		Detached:   s.Detached(),
		Markers:    s.store.Markers(),
		Repeat: RepeatSnapshot{
			State: s.repeat.State(),
			Range: s.repeat.Range(),
		},
		AutoAdd: AutoAddSnapshot{
			Enabled: s.AutoAdd(),
			HasFeed: s.scanner != nil,
		},
	}
	if s.scanner != nil {
		snap.AutoAdd.Scanning = s.scanner.Running()
		if snap.AutoAdd.Scanning {
			snap.AutoAdd.Interval = s.scanner.Interval().String()
		}
	}
	return snap
}

// MarshalJSON renders the snapshot.
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}
