package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"flowbuilder/application/ports"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/registry"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newSession(t *testing.T) *aggregates.Session {
	t.Helper()
	s, err := aggregates.NewSession("", registry.Default(), nil)
	require.NoError(t, err)
	return s
}

func newRepo(t *testing.T, ttl time.Duration) (*SessionRepository, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	repo := NewSessionRepository(ttl, zaptest.NewLogger(t))
	repo.now = clock.Now
	return repo, clock
}

func TestSessionRepository_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, time.Minute)
	session := newSession(t)

	require.NoError(t, repo.Save(ctx, session))

	got, err := repo.GetByID(ctx, session.ID())
	require.NoError(t, err)
	assert.Same(t, session, got)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Delete(ctx, session.ID()))
	_, err = repo.GetByID(ctx, session.ID())
	assert.True(t, errors.Is(err, pkgerrors.ErrFlowNotFound))

	err = repo.Delete(ctx, session.ID())
	assert.True(t, errors.Is(err, pkgerrors.ErrFlowNotFound))
}

func TestSessionRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo, clock := newRepo(t, time.Minute)
	session := newSession(t)
	require.NoError(t, repo.Save(ctx, session))

	// reads refresh the deadline
	clock.Advance(50 * time.Second)
	_, err := repo.GetByID(ctx, session.ID())
	require.NoError(t, err)
	clock.Advance(50 * time.Second)
	_, err = repo.GetByID(ctx, session.ID())
	require.NoError(t, err)

	clock.Advance(61 * time.Second)
	_, err = repo.GetByID(ctx, session.ID())
	assert.True(t, errors.Is(err, pkgerrors.ErrFlowNotFound))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSessionRepository_Sweep(t *testing.T) {
	ctx := context.Background()
	repo, clock := newRepo(t, time.Minute)

	stale := newSession(t)
	fresh := newSession(t)
	require.NoError(t, repo.Save(ctx, stale))
	clock.Advance(45 * time.Second)
	require.NoError(t, repo.Save(ctx, fresh))
	clock.Advance(30 * time.Second)

	var expired []valueobjects.FlowID
	repo.OnExpire(func(_ context.Context, s *aggregates.Session) {
		expired = append(expired, s.ID())
	})

	assert.Equal(t, 1, repo.Sweep(ctx))
	assert.Equal(t, []valueobjects.FlowID{stale.ID()}, expired)

	_, err := repo.GetByID(ctx, fresh.ID())
	assert.NoError(t, err)
}

func TestSessionRepository_StartStopsOnCancel(t *testing.T) {
	repo, _ := newRepo(t, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		repo.Start(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	flowID := valueobjects.NewFlowID()

	_, err := store.Get(ctx, flowID)
	assert.True(t, errors.Is(err, pkgerrors.ErrSavedFlowNotFound))

	require.NoError(t, store.Save(ctx, ports.SavedFlow{FlowID: flowID, Name: "v3", Version: 3}))
	require.NoError(t, store.Save(ctx, ports.SavedFlow{FlowID: flowID, Name: "v3 again", Version: 3}))

	err = store.Save(ctx, ports.SavedFlow{FlowID: flowID, Name: "v2", Version: 2})
	assert.True(t, errors.Is(err, pkgerrors.ErrConcurrentModification))

	saved, err := store.Get(ctx, flowID)
	require.NoError(t, err)
	assert.Equal(t, "v3 again", saved.Name)
	assert.Equal(t, 3, saved.Version)
}
