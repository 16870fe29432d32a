// Package selection tracks which single node is active for editing.
package selection

import (
	"sync"

	"flowbuilder/domain/core/valueobjects"
)

// Panel names the side panel the presentation layer shows
type Panel string

const (
	// PanelNodes is the node palette, shown when nothing is selected
	PanelNodes Panel = "nodes"

	// PanelSettings is the editing view bound to the selected node
	PanelSettings Panel = "settings"
)

// Controller is a two-state machine: NoSelection or Selected(nodeID).
// Select and Clear are legal from either state and never validate the id.
type Controller struct {
	mu       sync.RWMutex
	selected valueobjects.NodeID
	active   bool
}

// NewController creates a controller with nothing selected
func NewController() *Controller {
	return &Controller{}
}

// Select makes nodeID the active node
func (c *Controller) Select(nodeID valueobjects.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nodeID
	c.active = true
}

// Clear returns to NoSelection and reports whether a node was selected
func (c *Controller) Clear() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.active
	c.selected = valueobjects.NodeID{}
	c.active = false
	return was
}

// ClearIf clears the selection only when nodeID is the selected node
func (c *Controller) ClearIf(nodeID valueobjects.NodeID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || !c.selected.Equals(nodeID) {
		return false
	}
	c.selected = valueobjects.NodeID{}
	c.active = false
	return true
}

// Current returns the selected node, if any
func (c *Controller) Current() (valueobjects.NodeID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected, c.active
}

// Panel reports which side panel goes with the current state
func (c *Controller) Panel() Panel {
	if _, ok := c.Current(); ok {
		return PanelSettings
	}
	return PanelNodes
}
