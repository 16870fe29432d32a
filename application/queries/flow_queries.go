package queries

import (
	"flowbuilder/pkg/utils"
)

// GetFlowQuery reads the full graph of an open flow
type GetFlowQuery struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
}

// Validate validates the query
func (q GetFlowQuery) Validate() error { return utils.ValidateStruct(q) }

// GetNodeQuery reads a single node
type GetNodeQuery struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
	NodeID string `json:"nodeId" validate:"required,uuid"`
}

// Validate validates the query
func (q GetNodeQuery) Validate() error { return utils.ValidateStruct(q) }

// ValidateFlowQuery runs the save rules without saving
type ValidateFlowQuery struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
}

// Validate validates the query
func (q ValidateFlowQuery) Validate() error { return utils.ValidateStruct(q) }

// GetSelectionQuery reads what the side panel should show
type GetSelectionQuery struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
}

// Validate validates the query
func (q GetSelectionQuery) Validate() error { return utils.ValidateStruct(q) }

// GetSavedFlowQuery reads the last snapshot handed to the snapshot store
type GetSavedFlowQuery struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
}

// Validate validates the query
func (q GetSavedFlowQuery) Validate() error { return utils.ValidateStruct(q) }

// ListNodeKindsQuery lists the palette
type ListNodeKindsQuery struct{}

// Validate validates the query
func (q ListNodeKindsQuery) Validate() error { return nil }
