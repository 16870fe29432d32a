package aggregates

import (
	"fmt"
	"sync"
	"time"

	"flowbuilder/domain/config"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/registry"
	"flowbuilder/domain/core/validators"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/domain/events"
	pkgerrors "flowbuilder/pkg/errors"
)

// Flow is the aggregate root that owns a flow's nodes and edges.
// Every compound operation (check, then commit) runs under one mutex, so
// concurrent callers can never break the one-edge-per-source-port rule.
type Flow struct {
	mu sync.Mutex

	id        valueobjects.FlowID
	name      string
	nodes     map[valueobjects.NodeID]*entities.Node
	nodeOrder []valueobjects.NodeID
	edges     map[valueobjects.EdgeID]*entities.Edge
	edgeOrder []valueobjects.EdgeID
	createdAt time.Time
	updatedAt time.Time
	version   int
	events    []events.DomainEvent

	registry      *registry.Registry
	connections   *validators.ConnectionValidator
	flowValidator *validators.FlowValidator
	config        *config.DomainConfig
}

// NewFlow creates an empty flow whose nodes come from reg
func NewFlow(name string, reg *registry.Registry, cfg *config.DomainConfig) (*Flow, error) {
	if reg == nil {
		return nil, fmt.Errorf("node registry is required")
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if name == "" {
		name = cfg.DefaultFlowName
	}

	now := time.Now()
	flow := &Flow{
		id:            valueobjects.NewFlowID(),
		name:          name,
		nodes:         make(map[valueobjects.NodeID]*entities.Node),
		edges:         make(map[valueobjects.EdgeID]*entities.Edge),
		createdAt:     now,
		updatedAt:     now,
		version:       1,
		events:        []events.DomainEvent{},
		registry:      reg,
		connections:   validators.NewConnectionValidator(cfg),
		flowValidator: validators.NewFlowValidator(),
		config:        cfg,
	}

	flow.addEvent(events.NewFlowCreated(flow.id, name, now))

	return flow, nil
}

// ID returns the flow's unique identifier
func (f *Flow) ID() valueobjects.FlowID {
	return f.id
}

// Name returns the flow's display name
func (f *Flow) Name() string {
	return f.name
}

// CreatedAt returns when the flow was opened
func (f *Flow) CreatedAt() time.Time {
	return f.createdAt
}

// UpdatedAt returns the time of the last mutation
func (f *Flow) UpdatedAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updatedAt
}

// Version increases by one with every state change
func (f *Flow) Version() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version
}

// CreateNode places a node of a registered kind on the canvas. The node's
// data starts as a copy of the kind's default payload.
func (f *Flow) CreateNode(kind string, position valueobjects.Position) (*entities.Node, error) {
	descriptor, ok := f.registry.Lookup(kind)
	if !ok {
		return nil, pkgerrors.ErrUnknownNodeKind.
			WithMessage(fmt.Sprintf("Node kind %q is not registered", kind)).
			WithDetail("kind", kind)
	}

	data, err := valueobjects.NewNodeDataWithConfig(descriptor.DefaultPayload, f.config)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.nodes) >= f.config.MaxNodesPerFlow {
		return nil, pkgerrors.ErrFlowLimitExceeded.
			WithMessage("Maximum number of nodes per flow reached").
			WithDetail("max_nodes", f.config.MaxNodesPerFlow)
	}

	node, err := entities.NewNode(descriptor.Kind, position, data)
	if err != nil {
		return nil, err
	}

	f.nodes[node.ID()] = node
	f.nodeOrder = append(f.nodeOrder, node.ID())
	f.touch()

	f.addEvent(events.NewNodeCreated(f.id, f.version, node.ID(), node.Kind(), position, f.updatedAt))

	return node.Clone(), nil
}

// ProposeEdge commits conn if the connection rules accept it. A rejection
// leaves the flow unchanged and returns CONNECTION_REJECTED with the reason.
func (f *Flow) ProposeEdge(conn entities.Connection) (*entities.Edge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.nodes[conn.Source]; !ok {
		return nil, pkgerrors.ErrNodeNotFound.
			WithDetail("node_id", conn.Source.String()).
			WithDetail("role", "source")
	}
	if _, ok := f.nodes[conn.Target]; !ok {
		return nil, pkgerrors.ErrNodeNotFound.
			WithDetail("node_id", conn.Target.String()).
			WithDetail("role", "target")
	}

	if result := f.connections.Validate(f.orderedEdges(), conn); !result.Accepted {
		return nil, result.Err()
	}

	if len(f.edges) >= f.config.MaxEdgesPerFlow {
		return nil, pkgerrors.ErrFlowLimitExceeded.
			WithMessage("Maximum number of edges per flow reached").
			WithDetail("max_edges", f.config.MaxEdgesPerFlow)
	}

	edge := entities.NewEdge(conn)
	f.edges[edge.ID()] = edge
	f.edgeOrder = append(f.edgeOrder, edge.ID())
	f.touch()

	f.addEvent(events.NewNodesConnected(
		f.id, f.version, edge.ID(),
		conn.Source, conn.SourceHandle,
		conn.Target, conn.TargetHandle,
		f.updatedAt,
	))

	return edge.Clone(), nil
}

// UpdateNodeData merges patch into a node's data, keeping keys the patch does
// not name. An unknown node or an empty patch is a silent no-op.
func (f *Flow) UpdateNodeData(nodeID valueobjects.NodeID, patch map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	node, ok := f.nodes[nodeID]
	if !ok {
		return nil
	}

	changed, err := node.UpdateData(patch, f.config)
	if err != nil || !changed {
		return err
	}

	f.touch()
	f.addEvent(events.NewNodeDataUpdated(f.id, f.version, nodeID, node.Data().ToMap(), f.updatedAt))

	return nil
}

// MoveNode is the drag path
func (f *Flow) MoveNode(nodeID valueobjects.NodeID, position valueobjects.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	node, ok := f.nodes[nodeID]
	if !ok {
		return pkgerrors.ErrNodeNotFound.WithDetail("node_id", nodeID.String())
	}

	old := node.Position()
	if !node.MoveTo(position) {
		return nil
	}

	f.touch()
	f.addEvent(events.NewNodeMoved(f.id, f.version, nodeID, old, position, f.updatedAt))

	return nil
}

// RemoveNode removes a node together with every edge that touches it and
// returns the ids of those edges. Removed ids are never handed out again.
func (f *Flow) RemoveNode(nodeID valueobjects.NodeID) ([]valueobjects.EdgeID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.nodes[nodeID]; !ok {
		return nil, pkgerrors.ErrNodeNotFound.WithDetail("node_id", nodeID.String())
	}

	removed := []valueobjects.EdgeID{}
	for _, edgeID := range f.edgeOrder {
		if f.edges[edgeID].Touches(nodeID) {
			removed = append(removed, edgeID)
		}
	}
	for _, edgeID := range removed {
		f.deleteEdge(edgeID)
	}

	delete(f.nodes, nodeID)
	for i, id := range f.nodeOrder {
		if id.Equals(nodeID) {
			f.nodeOrder = append(f.nodeOrder[:i], f.nodeOrder[i+1:]...)
			break
		}
	}
	f.touch()

	f.addEvent(events.NewNodeRemoved(f.id, f.version, nodeID, removed, f.updatedAt))

	return removed, nil
}

// RemoveEdge deletes one edge, which frees its source port
func (f *Flow) RemoveEdge(edgeID valueobjects.EdgeID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	edge, ok := f.edges[edgeID]
	if !ok {
		return pkgerrors.ErrEdgeNotFound.WithDetail("edge_id", edgeID.String())
	}

	f.deleteEdge(edgeID)
	f.touch()

	f.addEvent(events.NewEdgeRemoved(
		f.id, f.version, edgeID,
		edge.Source(), edge.SourceHandle(), edge.Target(),
		f.updatedAt,
	))

	return nil
}

// Snapshot returns a deep copy of the current nodes and edges in insertion order
func (f *Flow) Snapshot() entities.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Validate runs the save check over a consistent snapshot
func (f *Flow) Validate() (validators.FlowValidationResult, entities.Snapshot) {
	snapshot := f.Snapshot()
	return f.flowValidator.Validate(snapshot), snapshot
}

// MarkSaved records that snapshot was handed to the snapshot store
func (f *Flow) MarkSaved(snapshot entities.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.addEvent(events.NewFlowSaved(f.id, snapshot.Version, snapshot.NodeCount(), snapshot.EdgeCount(), time.Now()))
}

// Close records the end of the editing session
func (f *Flow) Close(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.addEvent(events.NewFlowClosed(f.id, f.version, reason, time.Now()))
}

// GetNode returns a copy of a node
func (f *Flow) GetNode(nodeID valueobjects.NodeID) (*entities.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	node, ok := f.nodes[nodeID]
	if !ok {
		return nil, pkgerrors.ErrNodeNotFound.WithDetail("node_id", nodeID.String())
	}
	return node.Clone(), nil
}

// HasNode checks if a node exists in the flow
func (f *Flow) HasNode(nodeID valueobjects.NodeID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.nodes[nodeID]
	return ok
}

// NodeCount returns the number of nodes
func (f *Flow) NodeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.nodes)
}

// EdgeCount returns the number of edges
func (f *Flow) EdgeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edges)
}

// CheckInvariants verifies the structural invariants of the flow
func (f *Flow) CheckInvariants() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ports := make(map[string]valueobjects.EdgeID, len(f.edges))
	for _, edge := range f.edges {
		if _, ok := f.nodes[edge.Source()]; !ok {
			return fmt.Errorf("edge %s references non-existent source node", edge.ID())
		}
		if _, ok := f.nodes[edge.Target()]; !ok {
			return fmt.Errorf("edge %s references non-existent target node", edge.ID())
		}
		key := edge.Source().String() + "/" + edge.SourceHandle()
		if other, dup := ports[key]; dup {
			return fmt.Errorf("edges %s and %s share source port %s", other, edge.ID(), key)
		}
		ports[key] = edge.ID()
	}

	for _, node := range f.nodes {
		if _, ok := node.Data().Get(valueobjects.LabelKey); !ok {
			return fmt.Errorf("node %s has no label", node.ID())
		}
	}

	if len(f.nodes) != len(f.nodeOrder) || len(f.edges) != len(f.edgeOrder) {
		return fmt.Errorf("ordering index out of sync")
	}

	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (f *Flow) GetUncommittedEvents() []events.DomainEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]events.DomainEvent, len(f.events))
	copy(out, f.events)
	return out
}

// DrainEvents returns the uncommitted events and marks them as committed in
// one step, so events recorded by a concurrent command are not lost.
func (f *Flow) DrainEvents() []events.DomainEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.events
	f.events = []events.DomainEvent{}
	return out
}

// Private helper methods

func (f *Flow) addEvent(event events.DomainEvent) {
	f.events = append(f.events, event)
}

func (f *Flow) touch() {
	f.updatedAt = time.Now()
	f.version++
}

func (f *Flow) orderedEdges() []*entities.Edge {
	edges := make([]*entities.Edge, 0, len(f.edgeOrder))
	for _, id := range f.edgeOrder {
		edges = append(edges, f.edges[id])
	}
	return edges
}

func (f *Flow) deleteEdge(edgeID valueobjects.EdgeID) {
	delete(f.edges, edgeID)
	for i, id := range f.edgeOrder {
		if id.Equals(edgeID) {
			f.edgeOrder = append(f.edgeOrder[:i], f.edgeOrder[i+1:]...)
			return
		}
	}
}

func (f *Flow) snapshotLocked() entities.Snapshot {
	nodes := make([]*entities.Node, 0, len(f.nodeOrder))
	for _, id := range f.nodeOrder {
		nodes = append(nodes, f.nodes[id].Clone())
	}
	edges := make([]*entities.Edge, 0, len(f.edgeOrder))
	for _, id := range f.edgeOrder {
		edges = append(edges, f.edges[id].Clone())
	}
	return entities.Snapshot{
		FlowID:  f.id,
		Version: f.version,
		Nodes:   nodes,
		Edges:   edges,
		TakenAt: time.Now(),
	}
}
