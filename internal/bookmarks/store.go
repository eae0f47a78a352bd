package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"timeplus/internal/codec"
	"timeplus/internal/kvstore"
	"timeplus/internal/logging"
	"timeplus/internal/marker"
)

// MergeMode selects how Merge combines incoming markers with the current list.
type MergeMode int

const (
	// MergeReplace discards the current list.
	MergeReplace MergeMode = iota + 1
	// MergeUnion keeps current markers and adds incoming ones at free times.
	MergeUnion
)

func (m MergeMode) String() string {
	switch m {
	case MergeReplace:
		return "replace"
	case MergeUnion:
		return "union"
	default:
		return fmt.Sprintf("MergeMode(%d)", int(m))
	}
}

// RelocateFunc observes a marker moving from oldTime to newTime.
type RelocateFunc func(oldTime, newTime int64)

// ChangeFunc receives a copy of the list after every committed mutation.
type ChangeFunc func(markers []marker.Marker)

// Store is the canonical marker list for one media item.
type Store struct {
	mu        sync.Mutex
	kv        kvstore.Store
	key       string
	logger    *slog.Logger
	markers   []marker.Marker
	relocated RelocateFunc
	listeners []ChangeFunc
	mutations metric.Int64Counter
}

// Load reads the list stored under key. A missing key yields an empty list;
// unreadable elements are skipped with a warning.
func Load(ctx context.Context, kv kvstore.Store, key string, logger *slog.Logger) (*Store, error) {
	if kv == nil {
		return nil, errors.New("bookmarks: kvstore is required")
	}
	logger = logging.NewComponentLogger(logger, "bookmarks")

	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load markers: %w", err)
	}
	markers := []marker.Marker{}
	if ok {
		decoded, skipped, err := codec.DecodeRecords(raw)
		if err != nil {
			return nil, fmt.Errorf("load markers: %w", err)
		}
		for _, elemErr := range skipped {
			logging.WarnWithContext(logger, "skipping unreadable stored marker", "marker_record_skipped",
				logging.String("key", key),
				logging.Int("index", elemErr.Index),
				logging.String("raw", elemErr.Raw),
				logging.Error(elemErr.Err),
				logging.String(logging.FieldImpact, "marker dropped from list"),
				logging.String(logging.FieldErrorHint, "re-add the marker or restore from backup"),
			)
		}
		markers = decoded
	}

	mutations, err := meter().Int64Counter(
		"bookmarks.mutations",
		metric.WithDescription("Committed bookmark list mutations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mutation counter: %w", err)
	}

	return &Store{
		kv:        kv,
		key:       key,
		logger:    logger,
		markers:   markers,
		mutations: mutations,
	}, nil
}

// Key returns the persistence key backing this store.
func (s *Store) Key() string {
	return s.key
}

// OnRelocate installs the relocation hook, replacing any previous one.
func (s *Store) OnRelocate(fn RelocateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relocated = fn
}

// OnChange registers a listener called after every committed mutation.
func (s *Store) OnChange(fn ChangeFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Markers returns a copy of the current list.
func (s *Store) Markers() []marker.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return marker.Clone(s.markers)
}

// Len returns the number of markers.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

// Contains reports whether a marker exists at t.
func (s *Store) Contains(t int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := marker.Index(s.markers, t)
	return ok
}

// Get returns the marker at t.
func (s *Store) Get(t int64) (marker.Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := marker.Index(s.markers, t)
	if !ok {
		return marker.Marker{}, false
	}
	return s.markers[idx].Clone(), true
}

// commit persists next, swaps it in and notifies listeners. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, op string, next []marker.Marker) error {
	if err := s.persist(ctx, op, next); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Store) persist(ctx context.Context, op string, next []marker.Marker) error {
	encoded, err := codec.EncodeRecords(next)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, encoded); err != nil {
		logging.ErrorWithContext(s.logger, "persisting markers failed", "marker_persist_failed",
			logging.String("key", s.key),
			logging.String("op", op),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check storage backend availability"),
		)
		return fmt.Errorf("persist markers: %w", err)
	}
	s.markers = next
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	s.logger.Debug("markers committed",
		logging.String("op", op),
		logging.Int("count", len(next)),
	)
	return nil
}

func (s *Store) notify() {
	for _, fn := range s.listeners {
		fn(marker.Clone(s.markers))
	}
}

func (s *Store) rejectTime(op string, t int64) {
	logging.WarnWithContext(s.logger, "ignoring invalid marker time", "marker_time_invalid",
		logging.String("op", op),
		logging.Int64("time", t),
		logging.String(logging.FieldImpact, "marker not changed"),
		logging.String(logging.FieldErrorHint, "times must be non-negative whole seconds"),
	)
}

// Add inserts a marker at t. When a marker already exists there, memo is
// applied only if the existing marker was never annotated.
func (s *Store) Add(ctx context.Context, t int64, memo *string) error {
	if !marker.ValidTime(t) {
		s.rejectTime("add", t)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, found := marker.Index(s.markers, t)
	if found {
		if s.markers[idx].HasMemo() || memo == nil {
			return nil
		}
		next := marker.Clone(s.markers)
		next[idx].Memo = marker.NormalizeMemo(memo)
		return s.commit(ctx, "add", next)
	}

	next := make([]marker.Marker, 0, len(s.markers)+1)
	next = append(next, marker.Clone(s.markers[:idx])...)
	next = append(next, marker.New(t, memo))
	next = append(next, marker.Clone(s.markers[idx:])...)
	return s.commit(ctx, "add", next)
}

// AddPosition adds a marker at a player position floored to whole seconds.
func (s *Store) AddPosition(ctx context.Context, pos float64, memo *string) error {
	t, ok := marker.FromPosition(pos)
	if !ok {
		logging.WarnWithContext(s.logger, "ignoring invalid player position", "marker_position_invalid",
			logging.String("position", fmt.Sprint(pos)),
			logging.String(logging.FieldImpact, "marker not added"),
		)
		return nil
	}
	return s.Add(ctx, t, memo)
}

// Remove deletes the marker at t. A missing marker is not an error.
func (s *Store) Remove(ctx context.Context, t int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, found := marker.Index(s.markers, t)
	if !found {
		return nil
	}
	next := make([]marker.Marker, 0, len(s.markers)-1)
	next = append(next, marker.Clone(s.markers[:idx])...)
	next = append(next, marker.Clone(s.markers[idx+1:])...)
	return s.commit(ctx, "remove", next)
}

// Relocate moves the marker at oldTime to newTime with memo. It does nothing
// when oldTime is absent or newTime holds a different marker.
func (s *Store) Relocate(ctx context.Context, oldTime, newTime int64, memo *string) error {
	if !marker.ValidTime(newTime) {
		s.rejectTime("relocate", newTime)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relocateLocked(ctx, oldTime, newTime, memo)
}

func (s *Store) relocateLocked(ctx context.Context, oldTime, newTime int64, memo *string) error {
	idx, found := marker.Index(s.markers, oldTime)
	if !found {
		return nil
	}
	if newTime != oldTime {
		if _, occupied := marker.Index(s.markers, newTime); occupied {
			s.logger.Debug("relocate target occupied",
				logging.Int64("old_time", oldTime),
				logging.Int64("new_time", newTime),
			)
			return nil
		}
	}

	next := make([]marker.Marker, 0, len(s.markers))
	next = append(next, marker.Clone(s.markers[:idx])...)
	next = append(next, marker.Clone(s.markers[idx+1:])...)
	next = append(next, marker.New(newTime, memo))
	marker.Sort(next)

	if err := s.persist(ctx, "relocate", next); err != nil {
		return err
	}
	if s.relocated != nil {
		s.relocated(oldTime, newTime)
	}
	s.notify()
	return nil
}

// Nudge shifts the marker at t by one second in the direction of delta,
// keeping its memo. The target is clamped at zero.
func (s *Store) Nudge(ctx context.Context, t int64, delta int) error {
	step := int64(0)
	switch {
	case delta > 0:
		step = 1
	case delta < 0:
		step = -1
	}
	target := t + step
	if target < 0 {
		target = 0
	}
	if step == 0 || target == t {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx, found := marker.Index(s.markers, t)
	if !found {
		return nil
	}
	return s.relocateLocked(ctx, t, target, s.markers[idx].Memo)
}

// SetMemo overwrites the memo at t. A nil memo returns the marker to the
// never-annotated state.
func (s *Store) SetMemo(ctx context.Context, t int64, memo *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, found := marker.Index(s.markers, t)
	if !found {
		return nil
	}
	next := marker.Clone(s.markers)
	next[idx].Memo = marker.NormalizeMemo(memo)
	if next[idx].Equal(s.markers[idx]) {
		return nil
	}
	return s.commit(ctx, "set_memo", next)
}

// Merge combines incoming with the current list. REPLACE adopts incoming
// (sorted, first duplicate wins); UNION keeps current markers ahead of
// incoming ones at the same time.
func (s *Store) Merge(ctx context.Context, incoming []marker.Marker, mode MergeMode) error {
	for _, m := range incoming {
		if !marker.ValidTime(m.Time) {
			s.rejectTime("merge", m.Time)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var next []marker.Marker
	switch mode {
	case MergeReplace:
		next = marker.Normalize(incoming)
	case MergeUnion:
		next = marker.Union(s.markers, incoming)
	default:
		return fmt.Errorf("merge: unknown mode %v", mode)
	}
	if next == nil {
		next = []marker.Marker{}
	}
	return s.commit(ctx, "merge_"+mode.String(), next)
}
