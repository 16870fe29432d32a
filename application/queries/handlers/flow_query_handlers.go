package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowbuilder/application/ports"
	"flowbuilder/application/queries"
	"flowbuilder/application/queries/bus"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/registry"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

func loadSession(ctx context.Context, sessions ports.SessionRepository, flowID string) (*aggregates.Session, error) {
	id, err := valueobjects.NewFlowIDFromString(flowID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid flow ID: %v", err))
	}
	return sessions.GetByID(ctx, id)
}

func unexpectedQuery(q bus.Query) error {
	return fmt.Errorf("unexpected query type %T", q)
}

// GetFlowHandler handles GetFlowQuery
type GetFlowHandler struct {
	sessions ports.SessionRepository
}

// NewGetFlowHandler creates a new handler instance
func NewGetFlowHandler(sessions ports.SessionRepository) *GetFlowHandler {
	return &GetFlowHandler{sessions: sessions}
}

// Handle returns a queries.FlowView
func (h *GetFlowHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetFlowQuery)
	if !ok {
		return nil, unexpectedQuery(q)
	}

	session, err := loadSession(ctx, h.sessions, query.FlowID)
	if err != nil {
		return nil, err
	}

	view := queries.NewFlowView(session.Name(), session.Flow().Snapshot())
	if nodeID, ok := session.Selection().Current(); ok {
		view.SelectedNodeID = nodeID.String()
	}
	view.Panel = string(session.Panel())

	return view, nil
}

// GetNodeHandler handles GetNodeQuery
type GetNodeHandler struct {
	sessions ports.SessionRepository
}

// NewGetNodeHandler creates a new handler instance
func NewGetNodeHandler(sessions ports.SessionRepository) *GetNodeHandler {
	return &GetNodeHandler{sessions: sessions}
}

// Handle returns a queries.NodeView
func (h *GetNodeHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetNodeQuery)
	if !ok {
		return nil, unexpectedQuery(q)
	}

	nodeID, err := valueobjects.NewNodeIDFromString(query.NodeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid node ID: %v", err))
	}

	session, err := loadSession(ctx, h.sessions, query.FlowID)
	if err != nil {
		return nil, err
	}

	node, err := session.Flow().GetNode(nodeID)
	if err != nil {
		return nil, err
	}
	return queries.NewNodeView(node), nil
}

// ValidateFlowHandler handles ValidateFlowQuery
type ValidateFlowHandler struct {
	sessions ports.SessionRepository
}

// NewValidateFlowHandler creates a new handler instance
func NewValidateFlowHandler(sessions ports.SessionRepository) *ValidateFlowHandler {
	return &ValidateFlowHandler{sessions: sessions}
}

// Handle returns a queries.ValidationView. An invalid flow is a result, not an error.
func (h *ValidateFlowHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.ValidateFlowQuery)
	if !ok {
		return nil, unexpectedQuery(q)
	}

	session, err := loadSession(ctx, h.sessions, query.FlowID)
	if err != nil {
		return nil, err
	}

	result, _ := session.Flow().Validate()
	return queries.NewValidationView(result), nil
}

// GetSelectionHandler handles GetSelectionQuery
type GetSelectionHandler struct {
	sessions ports.SessionRepository
}

// NewGetSelectionHandler creates a new handler instance
func NewGetSelectionHandler(sessions ports.SessionRepository) *GetSelectionHandler {
	return &GetSelectionHandler{sessions: sessions}
}

// Handle returns a queries.SelectionView
func (h *GetSelectionHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetSelectionQuery)
	if !ok {
		return nil, unexpectedQuery(q)
	}

	session, err := loadSession(ctx, h.sessions, query.FlowID)
	if err != nil {
		return nil, err
	}

	view := queries.SelectionView{Panel: string(session.Panel())}
	if nodeID, ok := session.Selection().Current(); ok {
		view.NodeID = nodeID.String()
	}
	// a selection pointing at a node that is gone renders no editor
	if node, ok := session.SelectedNode(); ok {
		nv := queries.NewNodeView(node)
		view.Node = &nv
	}
	return view, nil
}

// GetSavedFlowHandler handles GetSavedFlowQuery
type GetSavedFlowHandler struct {
	store ports.SnapshotStore
}

// NewGetSavedFlowHandler creates a new handler instance
func NewGetSavedFlowHandler(store ports.SnapshotStore) *GetSavedFlowHandler {
	return &GetSavedFlowHandler{store: store}
}

// Handle returns a queries.SavedFlowView
func (h *GetSavedFlowHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetSavedFlowQuery)
	if !ok {
		return nil, unexpectedQuery(q)
	}

	flowID, err := valueobjects.NewFlowIDFromString(query.FlowID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid flow ID: %v", err))
	}

	saved, err := h.store.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	return queries.NewSavedFlowView(saved), nil
}

// ListNodeKindsHandler handles ListNodeKindsQuery
type ListNodeKindsHandler struct {
	registry *registry.Registry
	logger   *zap.Logger
}

// NewListNodeKindsHandler creates a new handler instance
func NewListNodeKindsHandler(reg *registry.Registry, logger *zap.Logger) *ListNodeKindsHandler {
	return &ListNodeKindsHandler{registry: reg, logger: logger}
}

// Handle returns []registry.NodeKindDescriptor in registration order
func (h *ListNodeKindsHandler) Handle(_ context.Context, q bus.Query) (interface{}, error) {
	if _, ok := q.(queries.ListNodeKindsQuery); !ok {
		return nil, unexpectedQuery(q)
	}

	kinds := h.registry.List()
	h.logger.Debug("Listed node kinds", zap.Int("count", len(kinds)))
	return kinds, nil
}
