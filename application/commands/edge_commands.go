package commands

import (
	"flowbuilder/pkg/utils"
)

// ConnectNodesCommand proposes an edge between two ports
type ConnectNodesCommand struct {
	FlowID       string `json:"flowId" validate:"required,uuid"`
	Source       string `json:"source" validate:"required,uuid"`
	SourceHandle string `json:"sourceHandle" validate:"max=100"`
	Target       string `json:"target" validate:"required,uuid"`
	TargetHandle string `json:"targetHandle" validate:"max=100"`
}

// Validate validates the command
func (c ConnectNodesCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteEdgeCommand removes one edge
type DeleteEdgeCommand struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
	EdgeID string `json:"edgeId" validate:"required,uuid"`
}

// Validate validates the command
func (c DeleteEdgeCommand) Validate() error { return utils.ValidateStruct(c) }
