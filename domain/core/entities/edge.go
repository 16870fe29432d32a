package entities

import (
	"time"

	"flowbuilder/domain/core/valueobjects"
)

// Connection is a proposed edge as drawn by the user. An empty handle names
// the node's default port.
type Connection struct {
	Source       valueobjects.NodeID
	SourceHandle string
	Target       valueobjects.NodeID
	TargetHandle string
}

// Edge is a committed, immutable connection from one node's output port to
// another node's input port.
type Edge struct {
	id           valueobjects.EdgeID
	source       valueobjects.NodeID
	sourceHandle string
	target       valueobjects.NodeID
	targetHandle string
	createdAt    time.Time
}

// NewEdge creates an edge with a fresh id from an accepted connection
func NewEdge(conn Connection) *Edge {
	return &Edge{
		id:           valueobjects.NewEdgeID(),
		source:       conn.Source,
		sourceHandle: conn.SourceHandle,
		target:       conn.Target,
		targetHandle: conn.TargetHandle,
		createdAt:    time.Now(),
	}
}

// ReconstructEdge rebuilds an edge from stored data
func ReconstructEdge(id valueobjects.EdgeID, conn Connection, createdAt time.Time) *Edge {
	return &Edge{
		id:           id,
		source:       conn.Source,
		sourceHandle: conn.SourceHandle,
		target:       conn.Target,
		targetHandle: conn.TargetHandle,
		createdAt:    createdAt,
	}
}

func (e *Edge) ID() valueobjects.EdgeID     { return e.id }
func (e *Edge) Source() valueobjects.NodeID { return e.source }
func (e *Edge) SourceHandle() string        { return e.sourceHandle }
func (e *Edge) Target() valueobjects.NodeID { return e.target }
func (e *Edge) TargetHandle() string        { return e.targetHandle }
func (e *Edge) CreatedAt() time.Time        { return e.createdAt }

// Connection returns the four-tuple the edge was created from
func (e *Edge) Connection() Connection {
	return Connection{
		Source:       e.source,
		SourceHandle: e.sourceHandle,
		Target:       e.target,
		TargetHandle: e.targetHandle,
	}
}

// SamePort reports whether the edge leaves from the given source port
func (e *Edge) SamePort(source valueobjects.NodeID, sourceHandle string) bool {
	return e.source.Equals(source) && e.sourceHandle == sourceHandle
}

// Touches reports whether the edge starts or ends at the node
func (e *Edge) Touches(nodeID valueobjects.NodeID) bool {
	return e.source.Equals(nodeID) || e.target.Equals(nodeID)
}

// Clone returns an independent copy of the edge
func (e *Edge) Clone() *Edge {
	c := *e
	return &c
}
