package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowbuilder/application/commands"
	"flowbuilder/application/commands/bus"
	"flowbuilder/application/ports"
	"flowbuilder/application/queries"
	querybus "flowbuilder/application/queries/bus"
	"flowbuilder/domain/core/aggregates"
	pkgerrors "flowbuilder/pkg/errors"
)

// FlowHandler handles flow-level HTTP requests
type FlowHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewFlowHandler creates a new flow handler
func NewFlowHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *FlowHandler {
	return &FlowHandler{
		responder:  responder{errors: errorHandler, logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// CreateFlowRequest represents the request body for opening a flow
type CreateFlowRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// SaveFlowResponse is returned by a successful save
type SaveFlowResponse struct {
	Message string                `json:"message"`
	Flow    queries.SavedFlowView `json:"flow"`
}

// CreateFlow handles POST /flows
func (h *FlowHandler) CreateFlow(w http.ResponseWriter, r *http.Request) {
	var req CreateFlowRequest
	if r.ContentLength != 0 {
		if err := h.decode(w, r, &req); err != nil {
			h.respondError(w, r, err)
			return
		}
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateFlowCommand{Name: req.Name})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	session := result.(*aggregates.Session)
	view, err := h.queryBus.Ask(r.Context(), queries.GetFlowQuery{FlowID: session.ID().String()})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/flows/"+session.ID().String())
	h.respondJSON(w, http.StatusCreated, view)
}

// GetFlow handles GET /flows/{flowID}
func (h *FlowHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryBus.Ask(r.Context(), queries.GetFlowQuery{FlowID: chi.URLParam(r, "flowID")})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// CloseFlow handles DELETE /flows/{flowID}
func (h *FlowHandler) CloseFlow(w http.ResponseWriter, r *http.Request) {
	if _, err := h.commandBus.Send(r.Context(), commands.CloseFlowCommand{FlowID: chi.URLParam(r, "flowID")}); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateFlow handles GET /flows/{flowID}/validation
func (h *FlowHandler) ValidateFlow(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryBus.Ask(r.Context(), queries.ValidateFlowQuery{FlowID: chi.URLParam(r, "flowID")})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// SaveFlow handles POST /flows/{flowID}/save
func (h *FlowHandler) SaveFlow(w http.ResponseWriter, r *http.Request) {
	result, err := h.commandBus.Send(r.Context(), commands.SaveFlowCommand{FlowID: chi.URLParam(r, "flowID")})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, SaveFlowResponse{
		Message: "Saved successfully!",
		Flow:    queries.NewSavedFlowView(result.(*ports.SavedFlow)),
	})
}

// GetSavedFlow handles GET /flows/{flowID}/saved
func (h *FlowHandler) GetSavedFlow(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryBus.Ask(r.Context(), queries.GetSavedFlowQuery{FlowID: chi.URLParam(r, "flowID")})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// ListNodeKinds handles GET /node-kinds
func (h *FlowHandler) ListNodeKinds(w http.ResponseWriter, r *http.Request) {
	kinds, err := h.queryBus.Ask(r.Context(), queries.ListNodeKindsQuery{})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"kinds": kinds})
}
