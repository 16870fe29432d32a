// Package registry holds the static catalog of node kinds a flow can use.
package registry

import (
	"fmt"

	"flowbuilder/domain/core/valueobjects"
)

// KindText is the message-send step, the only kind shipped today.
const KindText = "textNode"

// VisualHint carries presentation data the core never interprets
type VisualHint struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// NodeKindDescriptor describes one entry in the node palette
type NodeKindDescriptor struct {
	Kind           string                 `json:"kind"`
	DisplayLabel   string                 `json:"displayLabel"`
	DisplayName    string                 `json:"displayName"`
	DefaultPayload map[string]interface{} `json:"defaultPayload"`
	VisualHint     VisualHint             `json:"visualHint"`
}

func (d NodeKindDescriptor) clone() NodeKindDescriptor {
	c := d
	c.DefaultPayload = make(map[string]interface{}, len(d.DefaultPayload))
	for k, v := range d.DefaultPayload {
		c.DefaultPayload[k] = v
	}
	return c
}

// Registry is an immutable lookup table of node kinds, kept in table order
type Registry struct {
	byKind map[string]NodeKindDescriptor
	order  []string
}

// New builds a registry from descriptors. Every descriptor needs a unique
// kind and a default payload with a string label.
func New(descriptors ...NodeKindDescriptor) (*Registry, error) {
	r := &Registry{
		byKind: make(map[string]NodeKindDescriptor, len(descriptors)),
		order:  make([]string, 0, len(descriptors)),
	}

	for _, d := range descriptors {
		if d.Kind == "" {
			return nil, fmt.Errorf("node kind cannot be empty")
		}
		if _, exists := r.byKind[d.Kind]; exists {
			return nil, fmt.Errorf("node kind %q registered twice", d.Kind)
		}
		if _, err := valueobjects.NewNodeData(d.DefaultPayload); err != nil {
			return nil, fmt.Errorf("node kind %q has an invalid default payload: %w", d.Kind, err)
		}
		r.byKind[d.Kind] = d.clone()
		r.order = append(r.order, d.Kind)
	}

	return r, nil
}

// Default returns the registry with the built-in node kinds
func Default() *Registry {
	r, err := New(DefaultDescriptors()...)
	if err != nil {
		panic(fmt.Sprintf("registry: invalid built-in table: %v", err))
	}
	return r
}

// DefaultDescriptors returns the built-in node kind table
func DefaultDescriptors() []NodeKindDescriptor {
	return []NodeKindDescriptor{
		{
			Kind:         KindText,
			DisplayLabel: "Message",
			DisplayName:  "Send Message",
			DefaultPayload: map[string]interface{}{
				valueobjects.LabelKey: "Send Message",
			},
			VisualHint: VisualHint{Color: "#3b5998", Icon: "message"},
		},
	}
}

// Lookup returns the descriptor for kind
func (r *Registry) Lookup(kind string) (NodeKindDescriptor, bool) {
	d, ok := r.byKind[kind]
	if !ok {
		return NodeKindDescriptor{}, false
	}
	return d.clone(), true
}

// List returns every descriptor in table order
func (r *Registry) List() []NodeKindDescriptor {
	out := make([]NodeKindDescriptor, 0, len(r.order))
	for _, kind := range r.order {
		out = append(out, r.byKind[kind].clone())
	}
	return out
}

// Len returns the number of registered kinds
func (r *Registry) Len() int {
	return len(r.order)
}
