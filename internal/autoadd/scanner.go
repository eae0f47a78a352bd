package autoadd

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"timeplus/internal/logging"
	"timeplus/internal/marker"
	"timeplus/internal/timecode"
)

// AddFunc stores a marker. bookmarks.Store.Add satisfies it.
type AddFunc func(ctx context.Context, t int64, memo *string) error

// Options configures a Scanner.
type Options struct {
	Glyph  string
	Offset int64
	Logger *slog.Logger
}

// Scanner periodically ingests starred comments.
type Scanner struct {
	feed   Feed
	add    AddFunc
	glyph  string
	offset int64
	logger *slog.Logger

	seenMu sync.Mutex
	seen   map[Comment]struct{}

	lifecycle sync.Mutex

	mu       sync.Mutex
	running  bool
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewScanner builds a stopped scanner.
func NewScanner(feed Feed, add AddFunc, opts Options) (*Scanner, error) {
	if feed == nil {
		return nil, errors.New("autoadd: feed is required")
	}
	if add == nil {
		return nil, errors.New("autoadd: add func is required")
	}
	glyph := opts.Glyph
	if glyph == "" {
		glyph = "★"
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	return &Scanner{
		feed:   feed,
		add:    add,
		glyph:  glyph,
		offset: offset,
		logger: logging.NewComponentLogger(opts.Logger, "autoadd"),
		seen:   make(map[Comment]struct{}),
	}, nil
}

// ScanOnce reads the feed once and adds every new starred comment. It
// returns how many markers were submitted.
func (s *Scanner) ScanOnce(ctx context.Context) (int, error) {
	comments, err := s.feed.Comments(ctx)
	if err != nil {
		return 0, err
	}

	s.seenMu.Lock()
	defer s.seenMu.Unlock()

	added := 0
	for _, comment := range comments {
		if !strings.Contains(comment.Text, s.glyph) {
			continue
		}
		if _, ok := s.seen[comment]; ok {
			continue
		}
		parsed, err := timecode.ParseDisplayed(comment.Timestamp)
		if err != nil {
			logging.WarnWithContext(s.logger, "skipping comment with unreadable timestamp", "autoadd_timestamp_invalid",
				logging.String("timestamp", comment.Timestamp),
				logging.Error(err),
				logging.String(logging.FieldImpact, "comment not added as marker"),
			)
			s.seen[comment] = struct{}{}
			continue
		}
		t := parsed - s.offset
		if t < 0 {
			t = 0
		}
		if err := s.add(ctx, t, marker.Memo(comment.Text)); err != nil {
			return added, err
		}
		s.seen[comment] = struct{}{}
		added++
	}
	if added > 0 {
		s.logger.Info("auto-added starred comments", logging.Int("count", added))
	}
	return added, nil
}

// Start begins polling every interval. Calling Start while running restarts
// the loop with the new interval.
func (s *Scanner) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true
	s.interval = interval

	s.wg.Add(1)
	go s.loop(ctx, interval)
}

// Stop halts polling and waits for an in-flight scan. It is a no-op when
// the scanner is not running.
func (s *Scanner) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.stop()
}

func (s *Scanner) stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// Running reports whether the poll loop is active.
func (s *Scanner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interval returns the poll period of the active loop.
func (s *Scanner) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scanner) loop(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()

	s.scan(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Scanner) scan(ctx context.Context) {
	if _, err := s.ScanOnce(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logging.WarnWithContext(s.logger, "comment scan failed", "autoadd_scan_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "starred comments not ingested this round"),
			logging.String(logging.FieldErrorHint, "check the comment feed source"),
		)
	}
}
