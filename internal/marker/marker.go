package marker

import (
	"math"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Marker is a named point on a media timeline.
type Marker struct {
	Time int64   `json:"time"`
	Memo *string `json:"memo,omitempty"`
}

// Memo returns a pointer to a normalized copy of text.
func Memo(text string) *string {
	v := norm.NFC.String(text)
	return &v
}

// NormalizeMemo returns a fresh NFC-normalized copy of memo, or nil.
func NormalizeMemo(memo *string) *string {
	if memo == nil {
		return nil
	}
	return Memo(*memo)
}

// New builds a marker, copying memo so the caller's pointer is not retained.
func New(t int64, memo *string) Marker {
	return Marker{Time: t, Memo: NormalizeMemo(memo)}
}

// HasMemo reports whether the marker was ever annotated.
func (m Marker) HasMemo() bool {
	return m.Memo != nil
}

// MemoText returns the memo or "" when absent.
func (m Marker) MemoText() string {
	if m.Memo == nil {
		return ""
	}
	return *m.Memo
}

// Clone returns a deep copy.
func (m Marker) Clone() Marker {
	out := Marker{Time: m.Time}
	if m.Memo != nil {
		v := *m.Memo
		out.Memo = &v
	}
	return out
}

// Equal compares time and memo, treating nil and "" as different.
func (m Marker) Equal(other Marker) bool {
	if m.Time != other.Time {
		return false
	}
	if (m.Memo == nil) != (other.Memo == nil) {
		return false
	}
	return m.Memo == nil || *m.Memo == *other.Memo
}

// ValidTime reports whether t can be stored as a marker time.
func ValidTime(t int64) bool {
	return t >= 0
}

// FromPosition floors a player position to whole seconds. It fails for NaN,
// infinities, and negative positions.
func FromPosition(pos float64) (int64, bool) {
	if math.IsNaN(pos) || math.IsInf(pos, 0) || pos < 0 {
		return 0, false
	}
	floored := math.Floor(pos)
	if floored > math.MaxInt64 {
		return 0, false
	}
	return int64(floored), true
}

// Clone deep-copies a marker slice.
func Clone(markers []Marker) []Marker {
	if markers == nil {
		return nil
	}
	out := make([]Marker, len(markers))
	for i, m := range markers {
		out[i] = m.Clone()
	}
	return out
}

// Sort orders markers by time. The sort is stable so earlier entries stay
// ahead of later ones with the same time.
func Sort(markers []Marker) {
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Time < markers[j].Time
	})
}

// Collapse drops consecutive entries sharing a time, keeping the first one.
// The input must already be sorted.
func Collapse(markers []Marker) []Marker {
	if len(markers) < 2 {
		return markers
	}
	out := markers[:1]
	for _, m := range markers[1:] {
		if m.Time == out[len(out)-1].Time {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Normalize copies markers, drops invalid times, sorts, and collapses
// duplicates first-wins.
func Normalize(markers []Marker) []Marker {
	out := make([]Marker, 0, len(markers))
	for _, m := range markers {
		if !ValidTime(m.Time) {
			continue
		}
		out = append(out, New(m.Time, m.Memo))
	}
	Sort(out)
	return Collapse(out)
}

// Union concatenates current and incoming, sorts, and collapses duplicates.
// When both lists hold the same time the entry from current wins.
func Union(current, incoming []Marker) []Marker {
	combined := make([]Marker, 0, len(current)+len(incoming))
	combined = append(combined, current...)
	combined = append(combined, incoming...)
	return Normalize(combined)
}

// Index finds t in a sorted slice.
func Index(markers []Marker, t int64) (int, bool) {
	i := sort.Search(len(markers), func(i int) bool {
		return markers[i].Time >= t
	})
	return i, i < len(markers) && markers[i].Time == t
}

// Times lists the marker times in order.
func Times(markers []Marker) []int64 {
	out := make([]int64, len(markers))
	for i, m := range markers {
		out[i] = m.Time
	}
	return out
}
