package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// EdgeID identifies a connection between two nodes
type EdgeID struct {
	value string
}

// NewEdgeID creates a new random EdgeID
func NewEdgeID() EdgeID {
	return EdgeID{value: uuid.New().String()}
}

// NewEdgeIDFromString creates an EdgeID from an existing string
func NewEdgeIDFromString(id string) (EdgeID, error) {
	if id == "" {
		return EdgeID{}, errors.New("edge ID cannot be empty")
	}
	if !isValidUUID(id) {
		return EdgeID{}, errors.New("edge ID must be a valid UUID")
	}
	return EdgeID{value: id}, nil
}

func (id EdgeID) String() string               { return id.value }
func (id EdgeID) Equals(other EdgeID) bool     { return id.value == other.value }
func (id EdgeID) IsZero() bool                 { return id.value == "" }
func (id EdgeID) MarshalJSON() ([]byte, error) { return marshalID(id.value) }

// UnmarshalJSON implements json.Unmarshaler
func (id *EdgeID) UnmarshalJSON(data []byte) error {
	return unmarshalID(data, "EdgeID", &id.value)
}

// FlowID identifies one flow editing session
type FlowID struct {
	value string
}

// NewFlowID creates a new random FlowID
func NewFlowID() FlowID {
	return FlowID{value: uuid.New().String()}
}

// NewFlowIDFromString creates a FlowID from an existing string
func NewFlowIDFromString(id string) (FlowID, error) {
	if id == "" {
		return FlowID{}, errors.New("flow ID cannot be empty")
	}
	if !isValidUUID(id) {
		return FlowID{}, errors.New("flow ID must be a valid UUID")
	}
	return FlowID{value: id}, nil
}

func (id FlowID) String() string               { return id.value }
func (id FlowID) Equals(other FlowID) bool     { return id.value == other.value }
func (id FlowID) IsZero() bool                 { return id.value == "" }
func (id FlowID) MarshalJSON() ([]byte, error) { return marshalID(id.value) }

// UnmarshalJSON implements json.Unmarshaler
func (id *FlowID) UnmarshalJSON(data []byte) error {
	return unmarshalID(data, "FlowID", &id.value)
}
