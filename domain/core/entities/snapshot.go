package entities

import (
	"time"

	"flowbuilder/domain/core/valueobjects"
)

// Snapshot is a point-in-time copy of a flow's nodes and edges in insertion
// order. Mutating it never affects the flow it was taken from.
type Snapshot struct {
	FlowID  valueobjects.FlowID
	Version int
	Nodes   []*Node
	Edges   []*Edge
	TakenAt time.Time
}

// NodeCount returns the number of nodes in the snapshot
func (s Snapshot) NodeCount() int {
	return len(s.Nodes)
}

// EdgeCount returns the number of edges in the snapshot
func (s Snapshot) EdgeCount() int {
	return len(s.Edges)
}

// FindNode looks a node up by id
func (s Snapshot) FindNode(id valueobjects.NodeID) (*Node, bool) {
	for _, n := range s.Nodes {
		if n.ID().Equals(id) {
			return n, true
		}
	}
	return nil, false
}
