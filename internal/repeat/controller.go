package repeat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"timeplus/internal/logging"
	"timeplus/internal/media"
)

// State is the repeat mode.
type State int

const (
	Idle State = iota
	Selecting
	Armed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Armed:
		return "armed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText renders the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DefaultInterval is the correction period used when none is configured.
const DefaultInterval = 100 * time.Millisecond

// ErrClosed is returned by Click after Close.
var ErrClosed = errors.New("repeat: controller closed")

// Range is the selected loop bounds.
type Range struct {
	A    int64 `json:"a"`
	B    int64 `json:"b"`
	HasA bool  `json:"has_a"`
	HasB bool  `json:"has_b"`
}

// Controller drives the A-B loop against a player.
type Controller struct {
	player      media.Player
	interval    time.Duration
	logger      *slog.Logger
	corrections metric.Int64Counter

	mu     sync.Mutex
	state  State
	rng    Range
	gen    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// New returns an idle controller. A non-positive interval uses DefaultInterval.
func New(player media.Player, interval time.Duration, logger *slog.Logger) (*Controller, error) {
	if player == nil {
		return nil, errors.New("repeat: player is required")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	corrections, err := meter().Int64Counter(
		"repeat.corrections",
		metric.WithDescription("Seeks back to A performed by the repeat loop"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating corrections counter: %w", err)
	}
	return &Controller{
		player:      player,
		interval:    interval,
		logger:      logging.NewComponentLogger(logger, "repeat"),
		corrections: corrections,
	}, nil
}

// State returns the current mode.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Range returns the current bounds.
func (c *Controller) Range() Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng
}

// Toggle turns repeat mode on (Idle to Selecting) or off from any other state.
func (c *Controller) Toggle() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state
	}
	if c.state == Idle {
		c.state = Selecting
		c.rng = Range{}
		c.logger.Debug("repeat selecting")
	} else {
		c.disarmLocked("toggled off")
	}
	return c.state
}

// Enable enters Selecting from Idle and is a no-op otherwise.
func (c *Controller) Enable() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed && c.state == Idle {
		c.state = Selecting
		c.rng = Range{}
	}
	return c.state
}

// Disable returns to Idle, clearing the range and stopping the loop.
func (c *Controller) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		c.disarmLocked("disabled")
	}
}

// Click handles a marker click at t. While Selecting it picks A then B; in
// any other state it disarms and jumps playback to t.
func (c *Controller) Click(t int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if c.state == Selecting {
		switch {
		case !c.rng.HasA:
			c.rng.A, c.rng.HasA = t, true
		case t > c.rng.A:
			c.rng.B, c.rng.HasB = t, true
			c.armLocked()
		default:
			c.logger.Debug("ignoring click at or before A",
				logging.Int64("a", c.rng.A),
				logging.Int64("time", t),
			)
		}
		return nil
	}

	if c.state == Armed {
		c.disarmLocked("marker clicked")
	}
	return c.jumpLocked(float64(t))
}

// Revalidate follows a marker moving from oldTime to newTime. If it was A or
// B the bound moves with it; the loop stays armed only while A < B.
func (c *Controller) Revalidate(oldTime, newTime int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.rng.HasA && c.rng.A == oldTime:
		c.rng.A = newTime
	case c.rng.HasB && c.rng.B == oldTime:
		c.rng.B = newTime
	default:
		return
	}

	if c.rng.HasA && c.rng.HasB && c.rng.A < c.rng.B {
		if c.state != Armed {
			c.armLocked()
		}
		return
	}
	if c.state == Armed {
		c.disarmLocked("range invalid after relocation")
	}
}

// Retain drops bounds whose markers no longer exist. An armed range loses
// its loop; a pending A while Selecting is cleared.
func (c *Controller) Retain(exists func(t int64) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Armed:
		if !exists(c.rng.A) || !exists(c.rng.B) {
			c.disarmLocked("range marker removed")
		}
	case Selecting:
		if c.rng.HasA && !exists(c.rng.A) {
			c.rng = Range{}
		}
	}
}

// Tick performs one correction check immediately. It reports whether a seek
// back to A happened.
func (c *Controller) Tick() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.correctLocked()
}

// Close disarms and waits for the loop goroutine to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.state != Idle {
		c.disarmLocked("closed")
	}
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) armLocked() {
	if c.closed {
		return
	}
	c.state = Armed
	c.gen++
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	gen := c.gen

	c.logger.Info("repeat armed",
		logging.Int64("a", c.rng.A),
		logging.Int64("b", c.rng.B),
	)

	c.wg.Add(1)
	go c.loop(ctx, gen)
}

func (c *Controller) disarmLocked(reason string) {
	wasArmed := c.state == Armed
	c.state = Idle
	c.rng = Range{}
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if wasArmed {
		c.logger.Info("repeat disarmed", logging.String("reason", reason))
	}
}

func (c *Controller) loop(ctx context.Context, gen uint64) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.tick(gen) {
				return
			}
		}
	}
}

// tick runs one scheduled check. It returns false once gen is stale.
func (c *Controller) tick(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Armed || c.gen != gen {
		return false
	}
	if _, err := c.correctLocked(); err != nil {
		logging.WarnWithContext(c.logger, "repeat correction failed", "repeat_seek_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "playback left the loop range"),
			logging.String(logging.FieldErrorHint, "check the media player"),
		)
	}
	return true
}

func (c *Controller) correctLocked() (bool, error) {
	if c.state != Armed {
		return false, nil
	}
	pos := c.player.Position()
	a, b := float64(c.rng.A), float64(c.rng.B)
	if pos >= a && pos < b {
		return false, nil
	}
	if err := c.jumpLocked(a); err != nil {
		return false, err
	}
	c.corrections.Add(context.Background(), 1)
	c.logger.Debug("repeat corrected position",
		logging.String("position", fmt.Sprintf("%.3f", pos)),
		logging.Int64("a", c.rng.A),
	)
	return true, nil
}

func (c *Controller) jumpLocked(t float64) error {
	if err := c.player.Seek(t); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	if err := c.player.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}
