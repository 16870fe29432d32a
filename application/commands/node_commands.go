package commands

import (
	"flowbuilder/pkg/utils"
)

// CreateNodeCommand drops a node of a registered kind on the canvas
type CreateNodeCommand struct {
	FlowID string  `json:"flowId" validate:"required,uuid"`
	Kind   string  `json:"kind" validate:"required,max=100"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Validate validates the command
func (c CreateNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// UpdateNodeDataCommand merges a partial data patch into a node
type UpdateNodeDataCommand struct {
	FlowID string                 `json:"flowId" validate:"required,uuid"`
	NodeID string                 `json:"nodeId" validate:"required,uuid"`
	Patch  map[string]interface{} `json:"data"`
}

// Validate validates the command
func (c UpdateNodeDataCommand) Validate() error { return utils.ValidateStruct(c) }

// MoveNodeCommand is the result of dragging a node
type MoveNodeCommand struct {
	FlowID string  `json:"flowId" validate:"required,uuid"`
	NodeID string  `json:"nodeId" validate:"required,uuid"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Validate validates the command
func (c MoveNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteNodeCommand removes a node and every edge touching it
type DeleteNodeCommand struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
	NodeID string `json:"nodeId" validate:"required,uuid"`
}

// Validate validates the command
func (c DeleteNodeCommand) Validate() error { return utils.ValidateStruct(c) }
