package queries

import (
	"flowbuilder/application/ports"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/validators"
	"flowbuilder/pkg/utils"
)

// Position represents canvas coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeView is the read model of a node
type NodeView struct {
	ID        string                 `json:"id"`
	Kind      string                 `json:"type"`
	Position  Position               `json:"position"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt string                 `json:"createdAt"`
	UpdatedAt string                 `json:"updatedAt"`
}

// EdgeView is the read model of an edge
type EdgeView struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// FlowView is the whole canvas of an open flow
type FlowView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Version        int        `json:"version"`
	Nodes          []NodeView `json:"nodes"`
	Edges          []EdgeView `json:"edges"`
	SelectedNodeID string     `json:"selectedNodeId,omitempty"`
	Panel          string     `json:"panel"`
	NodeCount      int        `json:"nodeCount"`
	EdgeCount      int        `json:"edgeCount"`
}

// ValidationView reports whether the flow can be saved
type ValidationView struct {
	Valid         bool     `json:"valid"`
	Reason        string   `json:"reason,omitempty"`
	Message       string   `json:"message,omitempty"`
	RootlessNodes []string `json:"rootlessNodes,omitempty"`
}

// SelectionView tells the presentation layer which panel to show
type SelectionView struct {
	NodeID string    `json:"nodeId,omitempty"`
	Panel  string    `json:"panel"`
	Node   *NodeView `json:"node,omitempty"`
}

// SavedFlowView is a stored snapshot
type SavedFlowView struct {
	FlowID  string     `json:"flowId"`
	Name    string     `json:"name"`
	Version int        `json:"version"`
	SavedAt string     `json:"savedAt"`
	Nodes   []NodeView `json:"nodes"`
	Edges   []EdgeView `json:"edges"`
}

// NewNodeView converts a node entity to its read model
func NewNodeView(node *entities.Node) NodeView {
	return NodeView{
		ID:   node.ID().String(),
		Kind: node.Kind(),
		Position: Position{
			X: node.Position().X(),
			Y: node.Position().Y(),
		},
		Data:      node.Data().ToMap(),
		CreatedAt: utils.FormatTimestamp(node.CreatedAt()),
		UpdatedAt: utils.FormatTimestamp(node.UpdatedAt()),
	}
}

// NewEdgeView converts an edge entity to its read model
func NewEdgeView(edge *entities.Edge) EdgeView {
	return EdgeView{
		ID:           edge.ID().String(),
		Source:       edge.Source().String(),
		SourceHandle: edge.SourceHandle(),
		Target:       edge.Target().String(),
		TargetHandle: edge.TargetHandle(),
	}
}

func nodeViews(nodes []*entities.Node) []NodeView {
	views := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, NewNodeView(n))
	}
	return views
}

func edgeViews(edges []*entities.Edge) []EdgeView {
	views := make([]EdgeView, 0, len(edges))
	for _, e := range edges {
		views = append(views, NewEdgeView(e))
	}
	return views
}

// NewFlowView builds the canvas read model from a snapshot
func NewFlowView(name string, snapshot entities.Snapshot) FlowView {
	return FlowView{
		ID:        snapshot.FlowID.String(),
		Name:      name,
		Version:   snapshot.Version,
		Nodes:     nodeViews(snapshot.Nodes),
		Edges:     edgeViews(snapshot.Edges),
		NodeCount: snapshot.NodeCount(),
		EdgeCount: snapshot.EdgeCount(),
	}
}

// NewValidationView converts a flow validation result
func NewValidationView(result validators.FlowValidationResult) ValidationView {
	view := ValidationView{
		Valid:  result.Valid,
		Reason: result.Reason,
	}
	if !result.Valid {
		view.Message = "Cannot save flow"
	}
	for _, id := range result.RootlessNodes {
		view.RootlessNodes = append(view.RootlessNodes, id.String())
	}
	return view
}

// NewSavedFlowView converts a stored snapshot
func NewSavedFlowView(saved *ports.SavedFlow) SavedFlowView {
	return SavedFlowView{
		FlowID:  saved.FlowID.String(),
		Name:    saved.Name,
		Version: saved.Version,
		SavedAt: utils.FormatTimestamp(saved.SavedAt),
		Nodes:   nodeViews(saved.Snapshot.Nodes),
		Edges:   edgeViews(saved.Snapshot.Edges),
	}
}
