package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"flowbuilder/application/commands"
	"flowbuilder/application/commands/bus"
	"flowbuilder/application/ports"
	"flowbuilder/domain/config"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/registry"
)

// CreateFlowHandler opens a new editing session
type CreateFlowHandler struct {
	sessionHandler
	registry *registry.Registry
	config   *config.DomainConfig
}

// NewCreateFlowHandler creates a new handler instance
func NewCreateFlowHandler(
	sessions ports.SessionRepository,
	eventBus ports.EventBus,
	reg *registry.Registry,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *CreateFlowHandler {
	return &CreateFlowHandler{
		sessionHandler: newSessionHandler(sessions, eventBus, logger),
		registry:       reg,
		config:         cfg,
	}
}

// Handle returns the new *aggregates.Session
func (h *CreateFlowHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.CreateFlowCommand)
	if !ok {
		return nil, unexpectedCommand(c)
	}

	session, err := aggregates.NewSession(cmd.Name, h.registry, h.config)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	if err := h.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	h.publishEvents(ctx, session)

	h.logger.Info("Flow opened",
		zap.String("flowID", session.ID().String()),
		zap.String("name", session.Name()),
	)

	return session, nil
}

// CloseFlowHandler ends an editing session
type CloseFlowHandler struct {
	sessionHandler
}

// NewCloseFlowHandler creates a new handler instance
func NewCloseFlowHandler(sessions ports.SessionRepository, eventBus ports.EventBus, logger *zap.Logger) *CloseFlowHandler {
	return &CloseFlowHandler{sessionHandler: newSessionHandler(sessions, eventBus, logger)}
}

// Handle executes the close flow command
func (h *CloseFlowHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.CloseFlowCommand)
	if !ok {
		return nil, unexpectedCommand(c)
	}

	session, err := h.loadSession(ctx, cmd.FlowID)
	if err != nil {
		return nil, err
	}

	if err := h.sessions.Delete(ctx, session.ID()); err != nil {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}

	session.Close("closed")
	h.publishEvents(ctx, session)

	return nil, nil
}

// SaveFlowHandler gates the external save side effect on the flow validator
type SaveFlowHandler struct {
	sessionHandler
	store ports.SnapshotStore
}

// NewSaveFlowHandler creates a new handler instance
func NewSaveFlowHandler(
	sessions ports.SessionRepository,
	store ports.SnapshotStore,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *SaveFlowHandler {
	return &SaveFlowHandler{
		sessionHandler: newSessionHandler(sessions, eventBus, logger),
		store:          store,
	}
}

// Handle returns the *ports.SavedFlow that was stored. An invalid flow
// returns FLOW_INVALID and stores nothing.
func (h *SaveFlowHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.SaveFlowCommand)
	if !ok {
		return nil, unexpectedCommand(c)
	}

	session, err := h.loadSession(ctx, cmd.FlowID)
	if err != nil {
		return nil, err
	}

	result, snapshot := session.Flow().Validate()
	if !result.Valid {
		h.logger.Info("Flow not saved",
			zap.String("flowID", cmd.FlowID),
			zap.String("reason", result.Reason),
			zap.Int("rootlessNodes", len(result.RootlessNodes)),
		)
		return nil, result.Err()
	}

	saved := ports.SavedFlow{
		FlowID:   session.ID(),
		Name:     session.Name(),
		Version:  snapshot.Version,
		Snapshot: snapshot,
		SavedAt:  time.Now(),
	}
	if err := h.store.Save(ctx, saved); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	session.Flow().MarkSaved(snapshot)
	h.publishEvents(ctx, session)

	h.logger.Info("Flow saved",
		zap.String("flowID", cmd.FlowID),
		zap.Int("version", saved.Version),
		zap.Int("nodeCount", snapshot.NodeCount()),
		zap.Int("edgeCount", snapshot.EdgeCount()),
	)

	return &saved, nil
}
