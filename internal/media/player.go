package media

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// Player exposes the playback position of a media element.
type Player interface {
	// Position returns the current position in seconds.
	Position() float64
	Seek(seconds float64) error
	Play() error
}

// ErrInvalidPosition is returned by Seek for NaN, infinite or negative targets.
var ErrInvalidPosition = errors.New("media: invalid position")

// Playhead simulates a player advancing with the wall clock.
type Playhead struct {
	mu       sync.Mutex
	now      func() time.Time
	base     float64
	since    time.Time
	playing  bool
	duration float64
}

// PlayheadOption customizes a Playhead.
type PlayheadOption func(*Playhead)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) PlayheadOption {
	return func(p *Playhead) {
		if now != nil {
			p.now = now
		}
	}
}

// WithDuration stops the playhead at d seconds. Zero means unbounded.
func WithDuration(d float64) PlayheadOption {
	return func(p *Playhead) {
		p.duration = d
	}
}

// NewPlayhead returns a paused playhead at position zero.
func NewPlayhead(opts ...PlayheadOption) *Playhead {
	p := &Playhead{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Playhead) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Playhead) positionLocked() float64 {
	pos := p.base
	if p.playing {
		pos += p.now().Sub(p.since).Seconds()
	}
	if p.duration > 0 && pos > p.duration {
		pos = p.duration
	}
	return pos
}

func (p *Playhead) Seek(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPosition, seconds)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.duration > 0 && seconds > p.duration {
		seconds = p.duration
	}
	p.base = seconds
	p.since = p.now()
	return nil
}

func (p *Playhead) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return nil
	}
	p.since = p.now()
	p.playing = true
	return nil
}

// Pause freezes the position.
func (p *Playhead) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.base = p.positionLocked()
	p.playing = false
}

// Playing reports whether the playhead is advancing.
func (p *Playhead) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
