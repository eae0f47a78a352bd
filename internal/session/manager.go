package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"timeplus/internal/logging"
)

// Manager owns at most one attached session and replaces it when the media
// item changes.
type Manager struct {
	opts   Options
	logger *slog.Logger
	active metric.Int64UpDownCounter

	mu      sync.Mutex
	current *Session
}

// NewManager validates opts and returns an empty manager.
func NewManager(opts Options) (*Manager, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	active, err := meter().Int64UpDownCounter(
		"session.active",
		metric.WithDescription("Attached sessions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active session gauge: %w", err)
	}
	return &Manager{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "session"),
		active: active,
	}, nil
}

// Attach returns the session for pageURL's media item. Attaching the same
// media item again returns the existing session; a different item detaches
// the previous one first.
func (m *Manager) Attach(ctx context.Context, pageURL string) (*Session, error) {
	mediaKey, err := MediaKey(pageURL)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		if m.current.MediaKey() == mediaKey && !m.current.Detached() {
			m.logger.Debug("session already attached",
				logging.String(logging.FieldMediaKey, mediaKey),
				logging.String(logging.FieldSessionID, m.current.ID()),
			)
			return m.current, nil
		}
		m.logger.Info("media item changed",
			logging.String("from", m.current.MediaKey()),
			logging.String("to", mediaKey),
		)
		m.detachLocked(ctx, m.current)
	}

	s, err := Open(ctx, pageURL, m.opts)
	if err != nil {
		return nil, err
	}
	m.current = s
	m.active.Add(ctx, 1)
	return s, nil
}

// Current returns the attached session or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Detach closes s. Detaching a session the manager no longer holds only
// closes it.
func (m *Manager) Detach(ctx context.Context, s *Session) {
	if s == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detachLocked(ctx, s)
}

func (m *Manager) detachLocked(ctx context.Context, s *Session) {
	wasAttached := !s.Detached()
	s.Close()
	if m.current == s {
		m.current = nil
		if wasAttached {
			m.active.Add(ctx, -1)
		}
	}
}

// Close detaches the current session.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.detachLocked(ctx, m.current)
	}
}
