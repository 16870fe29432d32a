package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowbuilder/application/commands"
	"flowbuilder/application/commands/bus"
	"flowbuilder/application/queries"
	querybus "flowbuilder/application/queries/bus"
	pkgerrors "flowbuilder/pkg/errors"
)

// SelectionHandler handles the side panel's selection state
type SelectionHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *SelectionHandler {
	return &SelectionHandler{
		responder:  responder{errors: errorHandler, logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// SelectNodeRequest names the node to edit
type SelectNodeRequest struct {
	NodeID string `json:"nodeId" validate:"required,uuid"`
}

// GetSelection handles GET /flows/{flowID}/selection
func (h *SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	h.respondSelection(w, r, chi.URLParam(r, "flowID"))
}

// SelectNode handles PUT /flows/{flowID}/selection
func (h *SelectionHandler) SelectNode(w http.ResponseWriter, r *http.Request) {
	var req SelectNodeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	flowID := chi.URLParam(r, "flowID")
	if _, err := h.commandBus.Send(r.Context(), commands.SelectNodeCommand{FlowID: flowID, NodeID: req.NodeID}); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondSelection(w, r, flowID)
}

// ClearSelection handles DELETE /flows/{flowID}/selection
func (h *SelectionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	if _, err := h.commandBus.Send(r.Context(), commands.ClearSelectionCommand{FlowID: flowID}); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondSelection(w, r, flowID)
}

func (h *SelectionHandler) respondSelection(w http.ResponseWriter, r *http.Request, flowID string) {
	view, err := h.queryBus.Ask(r.Context(), queries.GetSelectionQuery{FlowID: flowID})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}
