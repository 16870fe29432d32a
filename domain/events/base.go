package events

import (
	"time"

	"flowbuilder/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// Event type names as published to the event bus
const (
	TypeFlowCreated      = "flow.created"
	TypeFlowClosed       = "flow.closed"
	TypeFlowSaved        = "flow.saved"
	TypeNodeCreated      = "node.created"
	TypeNodeDataUpdated  = "node.data_updated"
	TypeNodeMoved        = "node.moved"
	TypeNodeRemoved      = "node.removed"
	TypeNodesConnected   = "nodes.connected"
	TypeEdgeRemoved      = "edge.removed"
	TypeNodeSelected     = "selection.node_selected"
	TypeSelectionCleared = "selection.cleared"
)

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(flowID valueobjects.FlowID, eventType string, version int, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: flowID.String(),
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     version,
	}
}

// Flow Events

// FlowCreated is raised when an editing session opens a new flow
type FlowCreated struct {
	BaseEvent
	FlowID valueobjects.FlowID `json:"flow_id"`
	Name   string              `json:"name"`
}

// NewFlowCreated creates a FlowCreated event
func NewFlowCreated(flowID valueobjects.FlowID, name string, timestamp time.Time) FlowCreated {
	return FlowCreated{
		BaseEvent: newBase(flowID, TypeFlowCreated, 1, timestamp),
		FlowID:    flowID,
		Name:      name,
	}
}

// FlowClosed is raised when an editing session ends
type FlowClosed struct {
	BaseEvent
	FlowID valueobjects.FlowID `json:"flow_id"`
	Reason string              `json:"reason"`
}

// NewFlowClosed creates a FlowClosed event
func NewFlowClosed(flowID valueobjects.FlowID, version int, reason string, timestamp time.Time) FlowClosed {
	return FlowClosed{
		BaseEvent: newBase(flowID, TypeFlowClosed, version, timestamp),
		FlowID:    flowID,
		Reason:    reason,
	}
}

// FlowSaved is raised after a valid snapshot was handed to the snapshot store
type FlowSaved struct {
	BaseEvent
	FlowID    valueobjects.FlowID `json:"flow_id"`
	NodeCount int                 `json:"node_count"`
	EdgeCount int                 `json:"edge_count"`
}

// NewFlowSaved creates a FlowSaved event
func NewFlowSaved(flowID valueobjects.FlowID, version, nodeCount, edgeCount int, timestamp time.Time) FlowSaved {
	return FlowSaved{
		BaseEvent: newBase(flowID, TypeFlowSaved, version, timestamp),
		FlowID:    flowID,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}
}

// Node Events

// NodeCreated is raised when a node is dropped on the canvas
type NodeCreated struct {
	BaseEvent
	NodeID   valueobjects.NodeID   `json:"node_id"`
	Kind     string                `json:"kind"`
	Position valueobjects.Position `json:"position"`
}

// NewNodeCreated creates a NodeCreated event
func NewNodeCreated(flowID valueobjects.FlowID, version int, nodeID valueobjects.NodeID, kind string, position valueobjects.Position, timestamp time.Time) NodeCreated {
	return NodeCreated{
		BaseEvent: newBase(flowID, TypeNodeCreated, version, timestamp),
		NodeID:    nodeID,
		Kind:      kind,
		Position:  position,
	}
}

// NodeDataUpdated is raised when an editing surface patches a node's data.
// Data holds the merged result.
type NodeDataUpdated struct {
	BaseEvent
	NodeID valueobjects.NodeID    `json:"node_id"`
	Data   map[string]interface{} `json:"data"`
}

// NewNodeDataUpdated creates a NodeDataUpdated event
func NewNodeDataUpdated(flowID valueobjects.FlowID, version int, nodeID valueobjects.NodeID, data map[string]interface{}, timestamp time.Time) NodeDataUpdated {
	return NodeDataUpdated{
		BaseEvent: newBase(flowID, TypeNodeDataUpdated, version, timestamp),
		NodeID:    nodeID,
		Data:      data,
	}
}

// NodeMoved is raised when a node is dragged to a new position
type NodeMoved struct {
	BaseEvent
	NodeID      valueobjects.NodeID   `json:"node_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(flowID valueobjects.FlowID, version int, nodeID valueobjects.NodeID, oldPos, newPos valueobjects.Position, timestamp time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent:   newBase(flowID, TypeNodeMoved, version, timestamp),
		NodeID:      nodeID,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// NodeRemoved is raised when a node and its edges leave the flow
type NodeRemoved struct {
	BaseEvent
	NodeID       valueobjects.NodeID   `json:"node_id"`
	RemovedEdges []valueobjects.EdgeID `json:"removed_edges"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(flowID valueobjects.FlowID, version int, nodeID valueobjects.NodeID, removedEdges []valueobjects.EdgeID, timestamp time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent:    newBase(flowID, TypeNodeRemoved, version, timestamp),
		NodeID:       nodeID,
		RemovedEdges: removedEdges,
	}
}

// Edge Events

// NodesConnected is raised when a proposed connection is accepted
type NodesConnected struct {
	BaseEvent
	EdgeID       valueobjects.EdgeID `json:"edge_id"`
	SourceID     valueobjects.NodeID `json:"source_id"`
	SourceHandle string              `json:"source_handle"`
	TargetID     valueobjects.NodeID `json:"target_id"`
	TargetHandle string              `json:"target_handle"`
}

// NewNodesConnected creates a NodesConnected event
func NewNodesConnected(flowID valueobjects.FlowID, version int, edgeID valueobjects.EdgeID, sourceID valueobjects.NodeID, sourceHandle string, targetID valueobjects.NodeID, targetHandle string, timestamp time.Time) NodesConnected {
	return NodesConnected{
		BaseEvent:    newBase(flowID, TypeNodesConnected, version, timestamp),
		EdgeID:       edgeID,
		SourceID:     sourceID,
		SourceHandle: sourceHandle,
		TargetID:     targetID,
		TargetHandle: targetHandle,
	}
}

// EdgeRemoved is raised when a single connection is deleted
type EdgeRemoved struct {
	BaseEvent
	EdgeID       valueobjects.EdgeID `json:"edge_id"`
	SourceID     valueobjects.NodeID `json:"source_id"`
	SourceHandle string              `json:"source_handle"`
	TargetID     valueobjects.NodeID `json:"target_id"`
}

// NewEdgeRemoved creates an EdgeRemoved event
func NewEdgeRemoved(flowID valueobjects.FlowID, version int, edgeID valueobjects.EdgeID, sourceID valueobjects.NodeID, sourceHandle string, targetID valueobjects.NodeID, timestamp time.Time) EdgeRemoved {
	return EdgeRemoved{
		BaseEvent:    newBase(flowID, TypeEdgeRemoved, version, timestamp),
		EdgeID:       edgeID,
		SourceID:     sourceID,
		SourceHandle: sourceHandle,
		TargetID:     targetID,
	}
}

// Selection Events

// NodeSelected is raised when a node becomes the active one for editing
type NodeSelected struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodeSelected creates a NodeSelected event
func NewNodeSelected(flowID valueobjects.FlowID, version int, nodeID valueobjects.NodeID, timestamp time.Time) NodeSelected {
	return NodeSelected{
		BaseEvent: newBase(flowID, TypeNodeSelected, version, timestamp),
		NodeID:    nodeID,
	}
}

// SelectionCleared is raised when no node is active any more
type SelectionCleared struct {
	BaseEvent
}

// NewSelectionCleared creates a SelectionCleared event
func NewSelectionCleared(flowID valueobjects.FlowID, version int, timestamp time.Time) SelectionCleared {
	return SelectionCleared{
		BaseEvent: newBase(flowID, TypeSelectionCleared, version, timestamp),
	}
}
