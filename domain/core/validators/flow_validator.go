package validators

import (
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/pkg/errors"
)

// ReasonMultipleEntryPoints means more than one node has no incoming edge
const ReasonMultipleEntryPoints = "multiple-entry-points"

// FlowValidationResult is Valid, or Invalid with a reason
type FlowValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	// RootlessNodes lists nodes with no incoming edge, in node order
	RootlessNodes []valueobjects.NodeID `json:"rootlessNodes"`
}

// Err turns an Invalid result into a FLOW_INVALID domain error
func (r FlowValidationResult) Err() error {
	if r.Valid {
		return nil
	}

	ids := make([]string, len(r.RootlessNodes))
	for i, id := range r.RootlessNodes {
		ids[i] = id.String()
	}

	return errors.ErrFlowInvalid.
		WithDetail("reason", r.Reason).
		WithDetail("rootless_nodes", ids)
}

// FlowValidator decides whether a snapshot is in a savable state
type FlowValidator struct{}

// NewFlowValidator creates a flow validator
func NewFlowValidator() *FlowValidator {
	return &FlowValidator{}
}

// Validate reports a flow with more than one node as Invalid when more than
// one node is rootless. It never blocks editing, only saving.
func (v *FlowValidator) Validate(snapshot entities.Snapshot) FlowValidationResult {
	rootless := RootlessNodes(snapshot)

	if snapshot.NodeCount() <= 1 {
		return FlowValidationResult{Valid: true, RootlessNodes: rootless}
	}

	if len(rootless) > 1 {
		return FlowValidationResult{
			Valid:         false,
			Reason:        ReasonMultipleEntryPoints,
			RootlessNodes: rootless,
		}
	}

	return FlowValidationResult{Valid: true, RootlessNodes: rootless}
}

// RootlessNodes returns the nodes that are the target of zero edges
func RootlessNodes(snapshot entities.Snapshot) []valueobjects.NodeID {
	targeted := make(map[string]struct{}, len(snapshot.Edges))
	for _, e := range snapshot.Edges {
		targeted[e.Target().String()] = struct{}{}
	}

	rootless := make([]valueobjects.NodeID, 0)
	for _, n := range snapshot.Nodes {
		if _, ok := targeted[n.ID().String()]; !ok {
			rootless = append(rootless, n.ID())
		}
	}
	return rootless
}
