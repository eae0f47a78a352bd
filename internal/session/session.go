package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"timeplus/internal/autoadd"
	"timeplus/internal/bookmarks"
	"timeplus/internal/codec"
	"timeplus/internal/config"
	"timeplus/internal/kvstore"
	"timeplus/internal/logging"
	"timeplus/internal/marker"
	"timeplus/internal/media"
	"timeplus/internal/repeat"
)

// ErrDetached is returned by every operation on a closed session.
var ErrDetached = errors.New("session: detached")

// FeedFactory returns the comment feed for a media item, or nil when none
// is available.
type FeedFactory func(mediaKey string) autoadd.Feed

// Options configures sessions.
type Options struct {
	KV             kvstore.Store
	Player         media.Player
	Feeds          FeedFactory
	KeyPrefix      string
	RepeatInterval time.Duration
	ScanInterval   time.Duration
	Glyph          string
	Offset         int64
	Logger         *slog.Logger
}

// OptionsFromConfig fills the tunables from cfg.
func OptionsFromConfig(cfg *config.Config, kv kvstore.Store, player media.Player, feeds FeedFactory, logger *slog.Logger) Options {
	return Options{
		KV:             kv,
		Player:         player,
		Feeds:          feeds,
		KeyPrefix:      cfg.Storage.KeyPrefix,
		RepeatInterval: cfg.RepeatInterval(),
		ScanInterval:   cfg.ScanInterval(),
		Glyph:          cfg.AutoAdd.Glyph,
		Offset:         int64(cfg.AutoAdd.OffsetSeconds),
		Logger:         logger,
	}
}

func (o Options) validate() error {
	if o.KV == nil {
		return errors.New("session: kvstore is required")
	}
	if o.Player == nil {
		return errors.New("session: player is required")
	}
	return nil
}

// Session is the controller for one attached media item.
type Session struct {
	id         string
	mediaKey   string
	pageURL    string
	attachedAt time.Time
	prefix     string

	kv           kvstore.Store
	player       media.Player
	store        *bookmarks.Store
	repeat       *repeat.Controller
	scanner      *autoadd.Scanner
	scanInterval time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	detached bool
	autoAdd  bool
}

// Open loads the markers for pageURL's media item and wires the repeat
// controller to follow relocations and removals.
func Open(ctx context.Context, pageURL string, opts Options) (*Session, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	mediaKey, err := MediaKey(pageURL)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	ctx = logging.WithSessionID(logging.WithMediaKey(ctx, mediaKey), id)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "session"))

	store, err := bookmarks.Load(ctx, opts.KV, opts.KeyPrefix+mediaKey, logger)
	if err != nil {
		return nil, err
	}
	ctrl, err := repeat.New(opts.Player, opts.RepeatInterval, logger)
	if err != nil {
		return nil, err
	}
	store.OnRelocate(ctrl.Revalidate)
	store.OnChange(func(markers []marker.Marker) {
		ctrl.Retain(func(t int64) bool {
			_, ok := marker.Index(markers, t)
			return ok
		})
	})

	enabled, err := autoadd.LoadEnabled(ctx, opts.KV, autoadd.FlagKey(opts.KeyPrefix))
	if err != nil {
		ctrl.Close()
		return nil, err
	}

	s := &Session{
		id:           id,
		mediaKey:     mediaKey,
		pageURL:      pageURL,
		attachedAt:   time.Now().UTC(),
		prefix:       opts.KeyPrefix,
		kv:           opts.KV,
		player:       opts.Player,
		store:        store,
		repeat:       ctrl,
		scanInterval: opts.ScanInterval,
		logger:       logger,
		autoAdd:      enabled,
	}

	if opts.Feeds != nil {
		if feed := opts.Feeds(mediaKey); feed != nil {
			scanner, err := autoadd.NewScanner(feed, store.Add, autoadd.Options{
				Glyph:  opts.Glyph,
				Offset: opts.Offset,
				Logger: logger,
			})
			if err != nil {
				ctrl.Close()
				return nil, err
			}
			s.scanner = scanner
		}
	}
	if s.autoAdd && s.scanner != nil {
		s.scanner.Start(s.scanInterval)
	}

	logger.Info("session attached",
		logging.String(logging.FieldEventType, "session_attached"),
		logging.Int("markers", store.Len()),
		logging.Bool("auto_add", enabled),
	)
	return s, nil
}

// ID returns the unique handle of this attachment.
func (s *Session) ID() string { return s.id }

// MediaKey returns the media item key.
func (s *Session) MediaKey() string { return s.mediaKey }

// PageURL returns the URL the session was attached with.
func (s *Session) PageURL() string { return s.pageURL }

// Detached reports whether Close has run.
func (s *Session) Detached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detached
}

func (s *Session) check() error {
	if s.Detached() {
		return ErrDetached
	}
	return nil
}

// Markers returns a copy of the current list.
func (s *Session) Markers() ([]marker.Marker, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.store.Markers(), nil
}

func (s *Session) Add(ctx context.Context, t int64, memo *string) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.store.Add(ctx, t, memo)
}

// AddPosition bookmarks the player's current position.
func (s *Session) AddPosition(ctx context.Context, memo *string) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.store.AddPosition(ctx, s.player.Position(), memo)
}

func (s *Session) Remove(ctx context.Context, t int64) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.store.Remove(ctx, t)
}

func (s *Session) Relocate(ctx context.Context, oldTime, newTime int64, memo *string) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.store.Relocate(ctx, oldTime, newTime, memo)
}

func (s *Session) SetMemo(ctx context.Context, t int64, memo *string) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.store.SetMemo(ctx, t, memo)
}

// Nudge moves the marker at t one second in the direction of delta.
func (s *Session) Nudge(ctx context.Context, t int64, delta int) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.store.Nudge(ctx, t, delta)
}

func (s *Session) Merge(ctx context.Context, incoming []marker.Marker, mode bookmarks.MergeMode) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.store.Merge(ctx, incoming, mode)
}

// Click forwards a marker click to the repeat controller. Clicks on times
// without a marker are ignored.
func (s *Session) Click(t int64) error {
	if err := s.check(); err != nil {
		return err
	}
	if !s.store.Contains(t) {
		logging.WarnWithContext(s.logger, "ignoring click on missing marker", "marker_click_missing",
			logging.Int64("time", t),
			logging.String(logging.FieldImpact, "repeat state not changed"),
		)
		return nil
	}
	return s.repeat.Click(t)
}

// ToggleRepeat switches repeat mode and returns the new state.
func (s *Session) ToggleRepeat() (repeat.State, error) {
	if err := s.check(); err != nil {
		return repeat.Idle, err
	}
	return s.repeat.Toggle(), nil
}

// Repeat exposes the controller for state inspection.
func (s *Session) Repeat() *repeat.Controller { return s.repeat }

// ExportText renders the list in text form.
func (s *Session) ExportText() (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}
	return codec.EncodeText(s.store.Markers()), nil
}

// ImportText parses text and merges it, UNION unless replace is set. Dropped
// tokens are logged and returned.
func (s *Session) ImportText(ctx context.Context, text string, replace bool) ([]codec.TokenError, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	incoming, skipped := codec.DecodeText(text)
	for _, tokErr := range skipped {
		logging.WarnWithContext(s.logger, "dropping unreadable import token", "import_token_skipped",
			logging.String("token", tokErr.Token),
			logging.Error(tokErr.Err),
			logging.String(logging.FieldImpact, "token not imported"),
			logging.String(logging.FieldErrorHint, "use MM:SS or H:MM:SS optionally followed by ' - memo'"),
		)
	}
	mode := bookmarks.MergeUnion
	if replace {
		mode = bookmarks.MergeReplace
	}
	if err := s.store.Merge(ctx, incoming, mode); err != nil {
		return skipped, err
	}
	return skipped, nil
}

// ShareURL returns the page's base URL carrying the current list.
func (s *Session) ShareURL() (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}
	return codec.ShareURL(s.pageURL, s.store.Markers())
}

// ConfirmFunc is asked whether to accept n shared markers.
type ConfirmFunc func(n int) bool

// OpenShared inspects pageURL for a share parameter. When one is present and
// confirm accepts it, the shared markers are UNION-merged. The returned URL
// always has the parameter stripped.
func (s *Session) OpenShared(ctx context.Context, pageURL string, confirm ConfirmFunc) (string, bool, error) {
	if err := s.check(); err != nil {
		return "", false, err
	}
	shared, err := codec.ExtractShare(pageURL)
	if err != nil {
		if shared.CleanURL == "" {
			return "", false, err
		}
		logging.WarnWithContext(s.logger, "ignoring malformed share parameter", "share_malformed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no markers imported"),
		)
		return shared.CleanURL, false, nil
	}
	if !shared.Found {
		return shared.CleanURL, false, nil
	}
	if confirm == nil || !confirm(len(shared.Markers)) {
		s.logger.Info("shared markers declined",
			logging.String(logging.FieldEventType, "share_declined"),
			logging.Int("count", len(shared.Markers)),
		)
		return shared.CleanURL, false, nil
	}
	if err := s.store.Merge(ctx, shared.Markers, bookmarks.MergeUnion); err != nil {
		return shared.CleanURL, false, err
	}
	s.logger.Info("shared markers merged",
		logging.String(logging.FieldEventType, "share_accepted"),
		logging.Int("count", len(shared.Markers)),
	)
	return shared.CleanURL, true, nil
}

// AutoAdd reports whether comment scanning is enabled.
func (s *Session) AutoAdd() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoAdd
}

// SetAutoAdd persists the flag and starts or stops the scanner.
func (s *Session) SetAutoAdd(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		return ErrDetached
	}
	if err := autoadd.SaveEnabled(ctx, s.kv, autoadd.FlagKey(s.prefix), enabled); err != nil {
		return err
	}
	s.autoAdd = enabled
	if s.scanner != nil {
		if enabled {
			s.scanner.Start(s.scanInterval)
		} else {
			s.scanner.Stop()
		}
	}
	s.logger.Info("auto-add toggled",
		logging.String(logging.FieldEventType, "auto_add_toggled"),
		logging.Bool("enabled", enabled),
	)
	return nil
}

// IngestOnce runs one scan of the comment feed regardless of the flag.
func (s *Session) IngestOnce(ctx context.Context) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	if s.scanner == nil {
		return 0, fmt.Errorf("session %s: no comment feed", s.mediaKey)
	}
	return s.scanner.ScanOnce(ctx)
}

// Watch runs the comment scanner until ctx is done, whether or not auto-add
// is enabled. A scanner already running for auto-add keeps running.
func (s *Session) Watch(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	if s.scanner == nil {
		return fmt.Errorf("session %s: no comment feed", s.mediaKey)
	}
	started := !s.scanner.Running()
	if started {
		s.scanner.Start(s.scanInterval)
	}
	<-ctx.Done()
	if started && !s.AutoAdd() {
		s.scanner.Stop()
	}
	return nil
}

// Close stops background work. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		return
	}
	s.detached = true
	s.mu.Unlock()

	if s.scanner != nil {
		s.scanner.Stop()
	}
	s.repeat.Close()
	s.logger.Info("session detached",
		logging.String(logging.FieldEventType, "session_detached"),
		logging.Duration("attached_for", time.Since(s.attachedAt)),
	)
}
