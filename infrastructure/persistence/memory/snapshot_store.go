package memory

import (
	"context"
	"sync"

	"flowbuilder/application/ports"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

// SnapshotStore keeps the last saved snapshot of each flow in memory
type SnapshotStore struct {
	mu    sync.RWMutex
	saved map[valueobjects.FlowID]ports.SavedFlow
}

// NewSnapshotStore creates an empty snapshot store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{saved: make(map[valueobjects.FlowID]ports.SavedFlow)}
}

// Save stores flow unless a newer version is already there
func (s *SnapshotStore) Save(ctx context.Context, flow ports.SavedFlow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.saved[flow.FlowID]; ok && current.Version > flow.Version {
		return pkgerrors.ErrConcurrentModification.
			WithDetail("flow_id", flow.FlowID.String()).
			WithDetail("stored_version", current.Version).
			WithDetail("version", flow.Version)
	}

	s.saved[flow.FlowID] = flow
	return nil
}

// Get returns the last saved snapshot
func (s *SnapshotStore) Get(ctx context.Context, id valueobjects.FlowID) (*ports.SavedFlow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saved, ok := s.saved[id]
	if !ok {
		return nil, pkgerrors.ErrSavedFlowNotFound.WithDetail("flow_id", id.String())
	}
	return &saved, nil
}
