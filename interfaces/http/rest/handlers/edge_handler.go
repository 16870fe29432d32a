package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowbuilder/application/commands"
	"flowbuilder/application/commands/bus"
	"flowbuilder/application/queries"
	"flowbuilder/domain/core/entities"
	pkgerrors "flowbuilder/pkg/errors"
)

// EdgeHandler handles edge-related HTTP requests
type EdgeHandler struct {
	responder
	commandBus *bus.CommandBus
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(commandBus *bus.CommandBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{
		responder:  responder{errors: errorHandler, logger: logger},
		commandBus: commandBus,
	}
}

// ConnectNodesRequest is a connection drawn between two ports
type ConnectNodesRequest struct {
	Source       string `json:"source" validate:"required,uuid"`
	SourceHandle string `json:"sourceHandle" validate:"max=100"`
	Target       string `json:"target" validate:"required,uuid"`
	TargetHandle string `json:"targetHandle" validate:"max=100"`
}

// ConnectNodes handles POST /flows/{flowID}/edges. A rejected proposal
// answers 409 with the rejection reason in the details.
func (h *EdgeHandler) ConnectNodes(w http.ResponseWriter, r *http.Request) {
	var req ConnectNodesRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.ConnectNodesCommand{
		FlowID:       chi.URLParam(r, "flowID"),
		Source:       req.Source,
		SourceHandle: req.SourceHandle,
		Target:       req.Target,
		TargetHandle: req.TargetHandle,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, queries.NewEdgeView(result.(*entities.Edge)))
}

// DeleteEdge handles DELETE /flows/{flowID}/edges/{edgeID}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	_, err := h.commandBus.Send(r.Context(), commands.DeleteEdgeCommand{
		FlowID: chi.URLParam(r, "flowID"),
		EdgeID: chi.URLParam(r, "edgeID"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
