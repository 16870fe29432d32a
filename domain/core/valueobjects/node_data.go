package valueobjects

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"flowbuilder/domain/config"
	pkgerrors "flowbuilder/pkg/errors"
)

// LabelKey is the one key every node's data must carry, as a string.
const LabelKey = "label"

// NodeData is the editable payload of a node. It is an open mapping with a
// required string label. NodeData is immutable: Merge returns a new value.
type NodeData struct {
	values map[string]interface{}
}

// NewNodeData creates node data using default configuration
func NewNodeData(values map[string]interface{}) (NodeData, error) {
	return NewNodeDataWithConfig(values, config.DefaultDomainConfig())
}

// NewNodeDataWithConfig validates values and takes a private copy of them
func NewNodeDataWithConfig(values map[string]interface{}, cfg *config.DomainConfig) (NodeData, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	raw, ok := values[LabelKey]
	if !ok {
		return NodeData{}, pkgerrors.ErrInvalidNodeData.
			WithMessage("Node data requires a label").
			WithDetail("field", LabelKey)
	}
	if err := validateLabel(raw, cfg); err != nil {
		return NodeData{}, err
	}

	return NodeData{values: copyMap(values)}, nil
}

// Merge applies patch on top of the current values, keeping keys the patch
// does not mention. The receiver is left untouched.
func (d NodeData) Merge(patch map[string]interface{}, cfg *config.DomainConfig) (NodeData, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if raw, ok := patch[LabelKey]; ok {
		if err := validateLabel(raw, cfg); err != nil {
			return d, err
		}
	}

	merged := copyMap(d.values)
	for k, v := range patch {
		merged[k] = copyValue(v)
	}
	return NodeData{values: merged}, nil
}

// Label returns the node label
func (d NodeData) Label() string {
	label, _ := d.values[LabelKey].(string)
	return label
}

// Get returns a single value
func (d NodeData) Get(key string) (interface{}, bool) {
	v, ok := d.values[key]
	return copyValue(v), ok
}

// ToMap returns a deep copy of the values
func (d NodeData) ToMap() map[string]interface{} {
	return copyMap(d.values)
}

// Len returns the number of keys
func (d NodeData) Len() int {
	return len(d.values)
}

// MarshalJSON implements json.Marshaler
func (d NodeData) MarshalJSON() ([]byte, error) {
	if d.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.values)
}

// UnmarshalJSON implements json.Unmarshaler
func (d *NodeData) UnmarshalJSON(data []byte) error {
	var values map[string]interface{}
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	parsed, err := NewNodeData(values)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func validateLabel(raw interface{}, cfg *config.DomainConfig) error {
	label, ok := raw.(string)
	if !ok {
		return pkgerrors.ErrInvalidNodeData.
			WithMessage("Node label must be a string").
			WithDetail("field", LabelKey).
			WithDetail("type", fmt.Sprintf("%T", raw))
	}
	if n := utf8.RuneCountInString(label); n > cfg.MaxLabelLength {
		return pkgerrors.ErrInvalidNodeData.
			WithMessage(fmt.Sprintf("Node label exceeds maximum length of %d characters", cfg.MaxLabelLength)).
			WithDetail("field", LabelKey).
			WithDetail("actual_length", n).
			WithDetail("max_length", cfg.MaxLabelLength)
	}
	return nil
}

func copyMap(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}
	return dst
}

// copyValue deep-copies the container shapes encoding/json produces.
func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return copyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
