package handlers

import (
	"context"

	"go.uber.org/zap"

	"flowbuilder/application/commands"
	"flowbuilder/application/commands/bus"
	"flowbuilder/application/ports"
)

// SelectNodeHandler handles the SelectNodeCommand
type SelectNodeHandler struct {
	sessionHandler
}

// NewSelectNodeHandler creates a new handler instance
func NewSelectNodeHandler(sessions ports.SessionRepository, eventBus ports.EventBus, logger *zap.Logger) *SelectNodeHandler {
	return &SelectNodeHandler{sessionHandler: newSessionHandler(sessions, eventBus, logger)}
}

// Handle executes the select node command
func (h *SelectNodeHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.SelectNodeCommand)
	if !ok {
		return nil, unexpectedCommand(c)
	}

	nodeID, err := parseNodeID(cmd.NodeID)
	if err != nil {
		return nil, err
	}

	session, err := h.loadSession(ctx, cmd.FlowID)
	if err != nil {
		return nil, err
	}

	session.SelectNode(nodeID)
	h.publishEvents(ctx, session)
	return nil, nil
}

// ClearSelectionHandler handles the ClearSelectionCommand
type ClearSelectionHandler struct {
	sessionHandler
}

// NewClearSelectionHandler creates a new handler instance
func NewClearSelectionHandler(sessions ports.SessionRepository, eventBus ports.EventBus, logger *zap.Logger) *ClearSelectionHandler {
	return &ClearSelectionHandler{sessionHandler: newSessionHandler(sessions, eventBus, logger)}
}

// Handle executes the clear selection command
func (h *ClearSelectionHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.ClearSelectionCommand)
	if !ok {
		return nil, unexpectedCommand(c)
	}

	session, err := h.loadSession(ctx, cmd.FlowID)
	if err != nil {
		return nil, err
	}

	session.ClearSelection()
	h.publishEvents(ctx, session)
	return nil, nil
}
