package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowbuilder/application/commands"
	"flowbuilder/application/commands/bus"
	"flowbuilder/application/queries"
	querybus "flowbuilder/application/queries/bus"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		responder:  responder{errors: errorHandler, logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// CreateNodeRequest represents a node dropped on the canvas
type CreateNodeRequest struct {
	Kind string   `json:"kind" validate:"required,max=100"`
	X    *float64 `json:"x" validate:"required"`
	Y    *float64 `json:"y" validate:"required"`
}

// UpdateNodeDataRequest carries a partial data patch
type UpdateNodeDataRequest struct {
	Data map[string]interface{} `json:"data" validate:"required"`
}

// MoveNodeRequest carries the new position after a drag
type MoveNodeRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// DeleteNodeResponse lists the edges removed with the node
type DeleteNodeResponse struct {
	RemovedEdges []string `json:"removedEdges"`
}

// CreateNode handles POST /flows/{flowID}/nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateNodeCommand{
		FlowID: chi.URLParam(r, "flowID"),
		Kind:   req.Kind,
		X:      *req.X,
		Y:      *req.Y,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, queries.NewNodeView(result.(*entities.Node)))
}

// GetNode handles GET /flows/{flowID}/nodes/{nodeID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryBus.Ask(r.Context(), queries.GetNodeQuery{
		FlowID: chi.URLParam(r, "flowID"),
		NodeID: chi.URLParam(r, "nodeID"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// UpdateNodeData handles PATCH /flows/{flowID}/nodes/{nodeID}/data.
// Updating a node that no longer exists is not an error.
func (h *NodeHandler) UpdateNodeData(w http.ResponseWriter, r *http.Request) {
	var req UpdateNodeDataRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	_, err := h.commandBus.Send(r.Context(), commands.UpdateNodeDataCommand{
		FlowID: chi.URLParam(r, "flowID"),
		NodeID: chi.URLParam(r, "nodeID"),
		Patch:  req.Data,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveNode handles PUT /flows/{flowID}/nodes/{nodeID}/position
func (h *NodeHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var req MoveNodeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	_, err := h.commandBus.Send(r.Context(), commands.MoveNodeCommand{
		FlowID: chi.URLParam(r, "flowID"),
		NodeID: chi.URLParam(r, "nodeID"),
		X:      *req.X,
		Y:      *req.Y,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNode handles DELETE /flows/{flowID}/nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	result, err := h.commandBus.Send(r.Context(), commands.DeleteNodeCommand{
		FlowID: chi.URLParam(r, "flowID"),
		NodeID: chi.URLParam(r, "nodeID"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	removed := result.([]valueobjects.EdgeID)
	resp := DeleteNodeResponse{RemovedEdges: make([]string, len(removed))}
	for i, id := range removed {
		resp.RemovedEdges[i] = id.String()
	}
	h.respondJSON(w, http.StatusOK, resp)
}
