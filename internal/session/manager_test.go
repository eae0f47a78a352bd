package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeplus/internal/kvstore"
	"timeplus/internal/session"
)

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	m, err := session.NewManager(newOptions(kvstore.NewMemory()))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(context.Background()) })
	return m
}

func TestAttachIsIdempotentPerMediaItem(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	first, err := m.Attach(ctx, "https://example.com/watch/sm1?from=ranking")
	require.NoError(t, err)
	again, err := m.Attach(ctx, "https://example.com/watch/sm1#comments")
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.Same(t, first, m.Current())
}

func TestAttachNewMediaItemDetachesPrevious(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	first, err := m.Attach(ctx, "https://example.com/watch/sm1")
	require.NoError(t, err)
	require.NoError(t, first.Add(ctx, 10, nil))

	second, err := m.Attach(ctx, "https://example.com/watch/sm2")
	require.NoError(t, err)

	assert.True(t, first.Detached())
	assert.ErrorIs(t, first.Add(ctx, 20, nil), session.ErrDetached)
	assert.Equal(t, "sm2", second.MediaKey())
	assert.Empty(t, markers(t, second))

	back, err := m.Attach(ctx, "https://example.com/watch/sm1")
	require.NoError(t, err)
	assert.NotSame(t, first, back)
	assert.Equal(t, []int64{10}, timesOf(t, back))
}

func TestDetachClearsCurrent(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	s, err := m.Attach(ctx, "https://example.com/watch/sm1")
	require.NoError(t, err)

	m.Detach(ctx, s)
	assert.Nil(t, m.Current())
	assert.True(t, s.Detached())

	m.Detach(ctx, s)
	m.Detach(ctx, nil)
}

func TestAttachRejectsURLWithoutMediaKey(t *testing.T) {
	m := newManager(t)
	_, err := m.Attach(context.Background(), "https://example.com/")
	assert.ErrorIs(t, err, session.ErrNoMediaKey)
	assert.Nil(t, m.Current())
}

func TestNewManagerRequiresCapabilities(t *testing.T) {
	_, err := session.NewManager(session.Options{})
	assert.Error(t, err)
}
