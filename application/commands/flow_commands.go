package commands

import (
	"flowbuilder/pkg/utils"
)

// CreateFlowCommand opens a new editing session
type CreateFlowCommand struct {
	Name string `json:"name" validate:"max=200"`
}

// Validate validates the command
func (c CreateFlowCommand) Validate() error { return utils.ValidateStruct(c) }

// CloseFlowCommand ends an editing session
type CloseFlowCommand struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
}

// Validate validates the command
func (c CloseFlowCommand) Validate() error { return utils.ValidateStruct(c) }

// SaveFlowCommand validates the flow and, if savable, hands a snapshot to the snapshot store
type SaveFlowCommand struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
}

// Validate validates the command
func (c SaveFlowCommand) Validate() error { return utils.ValidateStruct(c) }
