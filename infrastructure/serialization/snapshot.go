package serialization

import (
	"fmt"
	"time"

	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
)

// SnapshotDocument is the stored form of a flow snapshot
type SnapshotDocument struct {
	FlowID  string         `msgpack:"flow_id"`
	Version int            `msgpack:"version"`
	TakenAt time.Time      `msgpack:"taken_at"`
	Nodes   []NodeDocument `msgpack:"nodes"`
	Edges   []EdgeDocument `msgpack:"edges"`
}

// NodeDocument is the stored form of a node
type NodeDocument struct {
	ID        string                 `msgpack:"id"`
	Kind      string                 `msgpack:"kind"`
	X         float64                `msgpack:"x"`
	Y         float64                `msgpack:"y"`
	Data      map[string]interface{} `msgpack:"data"`
	CreatedAt time.Time              `msgpack:"created_at"`
	UpdatedAt time.Time              `msgpack:"updated_at"`
}

// EdgeDocument is the stored form of an edge
type EdgeDocument struct {
	ID           string    `msgpack:"id"`
	Source       string    `msgpack:"source"`
	SourceHandle string    `msgpack:"source_handle,omitempty"`
	Target       string    `msgpack:"target"`
	TargetHandle string    `msgpack:"target_handle,omitempty"`
	CreatedAt    time.Time `msgpack:"created_at"`
}

// NewSnapshotDocument flattens a snapshot
func NewSnapshotDocument(s entities.Snapshot) SnapshotDocument {
	doc := SnapshotDocument{
		FlowID:  s.FlowID.String(),
		Version: s.Version,
		TakenAt: s.TakenAt,
		Nodes:   make([]NodeDocument, 0, len(s.Nodes)),
		Edges:   make([]EdgeDocument, 0, len(s.Edges)),
	}

	for _, n := range s.Nodes {
		doc.Nodes = append(doc.Nodes, NodeDocument{
			ID:        n.ID().String(),
			Kind:      n.Kind(),
			X:         n.Position().X(),
			Y:         n.Position().Y(),
			Data:      n.Data().ToMap(),
			CreatedAt: n.CreatedAt(),
			UpdatedAt: n.UpdatedAt(),
		})
	}
	for _, e := range s.Edges {
		doc.Edges = append(doc.Edges, EdgeDocument{
			ID:           e.ID().String(),
			Source:       e.Source().String(),
			SourceHandle: e.SourceHandle(),
			Target:       e.Target().String(),
			TargetHandle: e.TargetHandle(),
			CreatedAt:    e.CreatedAt(),
		})
	}

	return doc
}

// ToSnapshot rebuilds the domain snapshot
func (d SnapshotDocument) ToSnapshot() (entities.Snapshot, error) {
	flowID, err := valueobjects.NewFlowIDFromString(d.FlowID)
	if err != nil {
		return entities.Snapshot{}, err
	}

	snapshot := entities.Snapshot{
		FlowID:  flowID,
		Version: d.Version,
		TakenAt: d.TakenAt,
		Nodes:   make([]*entities.Node, 0, len(d.Nodes)),
		Edges:   make([]*entities.Edge, 0, len(d.Edges)),
	}

	for _, nd := range d.Nodes {
		node, err := nd.toNode()
		if err != nil {
			return entities.Snapshot{}, fmt.Errorf("node %s: %w", nd.ID, err)
		}
		snapshot.Nodes = append(snapshot.Nodes, node)
	}

	for _, ed := range d.Edges {
		edge, err := ed.toEdge()
		if err != nil {
			return entities.Snapshot{}, fmt.Errorf("edge %s: %w", ed.ID, err)
		}
		snapshot.Edges = append(snapshot.Edges, edge)
	}

	return snapshot, nil
}

func (nd NodeDocument) toNode() (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(nd.ID)
	if err != nil {
		return nil, err
	}
	position, err := valueobjects.NewPosition(nd.X, nd.Y)
	if err != nil {
		return nil, err
	}
	data, err := valueobjects.NewNodeData(nd.Data)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructNode(id, nd.Kind, position, data, nd.CreatedAt, nd.UpdatedAt)
}

func (ed EdgeDocument) toEdge() (*entities.Edge, error) {
	id, err := valueobjects.NewEdgeIDFromString(ed.ID)
	if err != nil {
		return nil, err
	}
	source, err := valueobjects.NewNodeIDFromString(ed.Source)
	if err != nil {
		return nil, err
	}
	target, err := valueobjects.NewNodeIDFromString(ed.Target)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructEdge(id, entities.Connection{
		Source:       source,
		SourceHandle: ed.SourceHandle,
		Target:       target,
		TargetHandle: ed.TargetHandle,
	}, ed.CreatedAt), nil
}

// EncodeSnapshot serializes a snapshot
func (s *Serializer) EncodeSnapshot(snapshot entities.Snapshot) ([]byte, error) {
	return s.Serialize(NewSnapshotDocument(snapshot))
}

// DecodeSnapshot deserializes a snapshot
func (s *Serializer) DecodeSnapshot(data []byte) (entities.Snapshot, error) {
	var doc SnapshotDocument
	if err := s.Deserialize(data, &doc); err != nil {
		return entities.Snapshot{}, err
	}
	return doc.ToSnapshot()
}
