package ports

import (
	"context"
	"time"

	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/domain/events"
)

// SessionRepository keeps the open editing sessions.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type SessionRepository interface {
	// Save registers a session (create or refresh)
	Save(ctx context.Context, session *aggregates.Session) error

	// GetByID retrieves a session; ErrFlowNotFound when it is unknown or expired
	GetByID(ctx context.Context, id valueobjects.FlowID) (*aggregates.Session, error)

	// Delete ends a session
	Delete(ctx context.Context, id valueobjects.FlowID) error

	// Count returns the number of open sessions
	Count(ctx context.Context) (int, error)
}

// SavedFlow is what a successful save hands to the snapshot store
type SavedFlow struct {
	FlowID   valueobjects.FlowID
	Name     string
	Version  int
	Snapshot entities.Snapshot
	SavedAt  time.Time
}

// SnapshotStore is the external side effect behind "save".
type SnapshotStore interface {
	// Save stores the latest validated snapshot of a flow. An older version
	// never replaces a newer one.
	Save(ctx context.Context, flow SavedFlow) error

	// Get returns the last saved snapshot; ErrSavedFlowNotFound if none
	Get(ctx context.Context, id valueobjects.FlowID) (*SavedFlow, error)
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
