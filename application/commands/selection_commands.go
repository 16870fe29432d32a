package commands

import (
	"flowbuilder/pkg/utils"
)

// SelectNodeCommand makes a node the active one for editing
type SelectNodeCommand struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
	NodeID string `json:"nodeId" validate:"required,uuid"`
}

// Validate validates the command
func (c SelectNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// ClearSelectionCommand returns the session to the node palette
type ClearSelectionCommand struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
}

// Validate validates the command
func (c ClearSelectionCommand) Validate() error { return utils.ValidateStruct(c) }
