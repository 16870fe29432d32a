package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

// ExpireFunc is called, outside the repository lock, for every session the
// sweeper evicts
type ExpireFunc func(ctx context.Context, session *aggregates.Session)

// SessionRepository keeps open editing sessions in memory. Sessions idle for
// longer than the TTL are evicted; every read or save refreshes the deadline.
type SessionRepository struct {
	mu       sync.RWMutex
	items    map[valueobjects.FlowID]sessionItem
	ttl      time.Duration
	onExpire ExpireFunc
	logger   *zap.Logger
	now      func() time.Time
}

type sessionItem struct {
	session   *aggregates.Session
	expiresAt time.Time
}

// NewSessionRepository creates a new in-memory session repository
func NewSessionRepository(ttl time.Duration, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{
		items:  make(map[valueobjects.FlowID]sessionItem),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// OnExpire registers the eviction hook
func (r *SessionRepository) OnExpire(fn ExpireFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = fn
}

// Save registers or refreshes a session
func (r *SessionRepository) Save(ctx context.Context, session *aggregates.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[session.ID()] = sessionItem{
		session:   session,
		expiresAt: r.now().Add(r.ttl),
	}
	return nil
}

// GetByID returns a live session and pushes its deadline out
func (r *SessionRepository) GetByID(ctx context.Context, id valueobjects.FlowID) (*aggregates.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	now := r.now()
	if !exists || now.After(item.expiresAt) {
		return nil, pkgerrors.ErrFlowNotFound.WithDetail("flow_id", id.String())
	}

	item.expiresAt = now.Add(r.ttl)
	r.items[id] = item
	return item.session, nil
}

// Delete ends a session
func (r *SessionRepository) Delete(ctx context.Context, id valueobjects.FlowID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return pkgerrors.ErrFlowNotFound.WithDetail("flow_id", id.String())
	}
	delete(r.items, id)
	return nil
}

// Count returns the number of live sessions
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	count := 0
	for _, item := range r.items {
		if !now.After(item.expiresAt) {
			count++
		}
	}
	return count, nil
}

// Start runs the sweeper until ctx is cancelled
func (r *SessionRepository) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep evicts every expired session and returns how many were removed
func (r *SessionRepository) Sweep(ctx context.Context) int {
	r.mu.Lock()
	now := r.now()
	var expired []*aggregates.Session
	for id, item := range r.items {
		if now.After(item.expiresAt) {
			expired = append(expired, item.session)
			delete(r.items, id)
		}
	}
	onExpire := r.onExpire
	r.mu.Unlock()

	for _, session := range expired {
		r.logger.Info("Session expired",
			zap.String("flowID", session.ID().String()),
			zap.Duration("ttl", r.ttl),
		)
		if onExpire != nil {
			onExpire(ctx, session)
		}
	}
	return len(expired)
}
