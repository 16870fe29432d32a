package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowbuilder/application/commands/bus"
	"flowbuilder/application/ports"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

// sessionHandler holds what every flow command needs: the open sessions and
// somewhere to send the resulting events
type sessionHandler struct {
	sessions ports.SessionRepository
	eventBus ports.EventBus
	logger   *zap.Logger
}

func newSessionHandler(sessions ports.SessionRepository, eventBus ports.EventBus, logger *zap.Logger) sessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return sessionHandler{sessions: sessions, eventBus: eventBus, logger: logger}
}

func (h sessionHandler) loadSession(ctx context.Context, flowID string) (*aggregates.Session, error) {
	id, err := valueobjects.NewFlowIDFromString(flowID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid flow ID: %v", err))
	}
	return h.sessions.GetByID(ctx, id)
}

// publishEvents drains the session's events to the event bus. A publish
// failure is logged and never fails the command.
func (h sessionHandler) publishEvents(ctx context.Context, session *aggregates.Session) {
	evts := session.DrainEvents()
	if len(evts) == 0 {
		return
	}
	if err := h.eventBus.PublishBatch(ctx, evts); err != nil {
		h.logger.Warn("Failed to publish domain events",
			zap.String("flowID", session.ID().String()),
			zap.Int("eventCount", len(evts)),
			zap.Error(err),
		)
	}
}

func parseNodeID(raw string) (valueobjects.NodeID, error) {
	id, err := valueobjects.NewNodeIDFromString(raw)
	if err != nil {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError(fmt.Sprintf("invalid node ID: %v", err))
	}
	return id, nil
}

func parsePosition(x, y float64) (valueobjects.Position, error) {
	return valueobjects.NewPosition(x, y)
}

func unexpectedCommand(cmd bus.Command) error {
	return fmt.Errorf("unexpected command type %T", cmd)
}
