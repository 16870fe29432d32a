package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowbuilder/application/commands"
	"flowbuilder/application/commands/bus"
	"flowbuilder/application/ports"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

// ConnectNodesHandler runs a drawn connection through the connection rules
type ConnectNodesHandler struct {
	sessionHandler
}

// NewConnectNodesHandler creates a new handler instance
func NewConnectNodesHandler(sessions ports.SessionRepository, eventBus ports.EventBus, logger *zap.Logger) *ConnectNodesHandler {
	return &ConnectNodesHandler{sessionHandler: newSessionHandler(sessions, eventBus, logger)}
}

// Handle returns the committed *entities.Edge, or CONNECTION_REJECTED
func (h *ConnectNodesHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.ConnectNodesCommand)
	if !ok {
		return nil, unexpectedCommand(c)
	}

	source, err := parseNodeID(cmd.Source)
	if err != nil {
		return nil, err
	}
	target, err := parseNodeID(cmd.Target)
	if err != nil {
		return nil, err
	}

	session, err := h.loadSession(ctx, cmd.FlowID)
	if err != nil {
		return nil, err
	}

	edge, err := session.Flow().ProposeEdge(entities.Connection{
		Source:       source,
		SourceHandle: cmd.SourceHandle,
		Target:       target,
		TargetHandle: cmd.TargetHandle,
	})
	if err != nil {
		h.logger.Debug("Connection rejected",
			zap.String("flowID", cmd.FlowID),
			zap.String("source", cmd.Source),
			zap.String("sourceHandle", cmd.SourceHandle),
			zap.Error(err),
		)
		return nil, err
	}

	h.publishEvents(ctx, session)
	return edge, nil
}

// DeleteEdgeHandler handles the DeleteEdgeCommand
type DeleteEdgeHandler struct {
	sessionHandler
}

// NewDeleteEdgeHandler creates a new handler instance
func NewDeleteEdgeHandler(sessions ports.SessionRepository, eventBus ports.EventBus, logger *zap.Logger) *DeleteEdgeHandler {
	return &DeleteEdgeHandler{sessionHandler: newSessionHandler(sessions, eventBus, logger)}
}

// Handle executes the delete edge command
func (h *DeleteEdgeHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.DeleteEdgeCommand)
	if !ok {
		return nil, unexpectedCommand(c)
	}

	edgeID, err := valueobjects.NewEdgeIDFromString(cmd.EdgeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid edge ID: %v", err))
	}

	session, err := h.loadSession(ctx, cmd.FlowID)
	if err != nil {
		return nil, err
	}

	if err := session.Flow().RemoveEdge(edgeID); err != nil {
		return nil, err
	}

	h.publishEvents(ctx, session)
	return nil, nil
}
