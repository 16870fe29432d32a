package entities

import (
	"time"

	"flowbuilder/domain/config"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

// Node is one step of a flow placed on the canvas.
// Only the owning Flow mutates a node; callers receive clones.
type Node struct {
	id        valueobjects.NodeID
	kind      string
	position  valueobjects.Position
	data      valueobjects.NodeData
	createdAt time.Time
	updatedAt time.Time
}

// NewNode creates a node of the given kind
func NewNode(kind string, position valueobjects.Position, data valueobjects.NodeData) (*Node, error) {
	if kind == "" {
		return nil, pkgerrors.ErrUnknownNodeKind.WithDetail("kind", kind)
	}

	now := time.Now()
	return &Node{
		id:        valueobjects.NewNodeID(),
		kind:      kind,
		position:  position,
		data:      data,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructNode rebuilds a node from stored data with preserved timestamps
func ReconstructNode(
	id valueobjects.NodeID,
	kind string,
	position valueobjects.Position,
	data valueobjects.NodeData,
	createdAt, updatedAt time.Time,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if kind == "" {
		return nil, pkgerrors.NewValidationError("node kind cannot be empty")
	}

	return &Node{
		id:        id,
		kind:      kind,
		position:  position,
		data:      data,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Kind returns the registry key the node was created from
func (n *Node) Kind() string {
	return n.kind
}

// Position returns the node's canvas position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Data returns the node's data
func (n *Node) Data() valueobjects.NodeData {
	return n.data
}

// Label returns the node's label
func (n *Node) Label() string {
	return n.data.Label()
}

func (n *Node) CreatedAt() time.Time { return n.createdAt }
func (n *Node) UpdatedAt() time.Time { return n.updatedAt }

// UpdateData merges patch into the node's data. An empty patch is a no-op
// and reports false.
func (n *Node) UpdateData(patch map[string]interface{}, cfg *config.DomainConfig) (bool, error) {
	if len(patch) == 0 {
		return false, nil
	}

	merged, err := n.data.Merge(patch, cfg)
	if err != nil {
		return false, err
	}

	n.data = merged
	n.updatedAt = time.Now()
	return true, nil
}

// MoveTo changes the node's position. Moving to the same spot reports false.
func (n *Node) MoveTo(position valueobjects.Position) bool {
	if n.position.Equals(position) {
		return false
	}
	n.position = position
	n.updatedAt = time.Now()
	return true
}

// Clone returns an independent copy of the node
func (n *Node) Clone() *Node {
	c := *n
	return &c
}
