package handlers

import (
	"context"

	"go.uber.org/zap"

	"flowbuilder/application/commands"
	"flowbuilder/application/commands/bus"
	"flowbuilder/application/ports"
)

// CreateNodeHandler handles the CreateNodeCommand
type CreateNodeHandler struct {
	sessionHandler
}

// NewCreateNodeHandler creates a new handler instance
func NewCreateNodeHandler(sessions ports.SessionRepository, eventBus ports.EventBus, logger *zap.Logger) *CreateNodeHandler {
	return &CreateNodeHandler{sessionHandler: newSessionHandler(sessions, eventBus, logger)}
}

// Handle returns the created *entities.Node
func (h *CreateNodeHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.CreateNodeCommand)
	if !ok {
		return nil, unexpectedCommand(c)
	}

	position, err := parsePosition(cmd.X, cmd.Y)
	if err != nil {
		return nil, err
	}

	session, err := h.loadSession(ctx, cmd.FlowID)
	if err != nil {
		return nil, err
	}

	node, err := session.Flow().CreateNode(cmd.Kind, position)
	if err != nil {
		return nil, err
	}

	h.publishEvents(ctx, session)

	h.logger.Debug("Node created",
		zap.String("flowID", cmd.FlowID),
		zap.String("nodeID", node.ID().String()),
		zap.String("kind", node.Kind()),
	)

	return node, nil
}

// UpdateNodeDataHandler handles the UpdateNodeDataCommand
type UpdateNodeDataHandler struct {
	sessionHandler
}

// NewUpdateNodeDataHandler creates a new handler instance
func NewUpdateNodeDataHandler(sessions ports.SessionRepository, eventBus ports.EventBus, logger *zap.Logger) *UpdateNodeDataHandler {
	return &UpdateNodeDataHandler{sessionHandler: newSessionHandler(sessions, eventBus, logger)}
}

// Handle merges the patch; an unknown node is a silent no-op
func (h *UpdateNodeDataHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.UpdateNodeDataCommand)
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

	if err := session.Flow().UpdateNodeData(nodeID, cmd.Patch); err != nil {
		return nil, err
	}

	h.publishEvents(ctx, session)
	return nil, nil
}

// MoveNodeHandler handles the MoveNodeCommand
type MoveNodeHandler struct {
	sessionHandler
}

// NewMoveNodeHandler creates a new handler instance
func NewMoveNodeHandler(sessions ports.SessionRepository, eventBus ports.EventBus, logger *zap.Logger) *MoveNodeHandler {
	return &MoveNodeHandler{sessionHandler: newSessionHandler(sessions, eventBus, logger)}
}

// Handle executes the move node command
func (h *MoveNodeHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.MoveNodeCommand)
	if !ok {
		return nil, unexpectedCommand(c)
	}

	nodeID, err := parseNodeID(cmd.NodeID)
	if err != nil {
		return nil, err
	}
	position, err := parsePosition(cmd.X, cmd.Y)
	if err != nil {
		return nil, err
	}

	session, err := h.loadSession(ctx, cmd.FlowID)
	if err != nil {
		return nil, err
	}

	if err := session.Flow().MoveNode(nodeID, position); err != nil {
		return nil, err
	}

	h.publishEvents(ctx, session)
	return nil, nil
}

// DeleteNodeHandler handles the DeleteNodeCommand
type DeleteNodeHandler struct {
	sessionHandler
}

// NewDeleteNodeHandler creates a new handler instance
func NewDeleteNodeHandler(sessions ports.SessionRepository, eventBus ports.EventBus, logger *zap.Logger) *DeleteNodeHandler {
	return &DeleteNodeHandler{sessionHandler: newSessionHandler(sessions, eventBus, logger)}
}

// Handle returns the ids of the edges removed with the node
func (h *DeleteNodeHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.DeleteNodeCommand)
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

	removedEdges, err := session.RemoveNode(nodeID)
	if err != nil {
		return nil, err
	}

	h.publishEvents(ctx, session)

	h.logger.Debug("Node deleted",
		zap.String("flowID", cmd.FlowID),
		zap.String("nodeID", cmd.NodeID),
		zap.Int("removedEdges", len(removedEdges)),
	)

	return removedEdges, nil
}
