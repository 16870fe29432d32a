package selection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"flowbuilder/domain/core/valueobjects"
)

func TestController_StartsWithNoSelection(t *testing.T) {
	c := NewController()

	_, ok := c.Current()
	assert.False(t, ok)
	assert.Equal(t, PanelNodes, c.Panel())
}

func TestController_Transitions(t *testing.T) {
	a := valueobjects.NewNodeID()
	b := valueobjects.NewNodeID()

	tests := []struct {
		name      string
		actions   func(c *Controller)
		wantID    valueobjects.NodeID
		wantOK    bool
		wantPanel Panel
	}{
		{
			name:      "select from none",
			actions:   func(c *Controller) { c.Select(a) },
			wantID:    a,
			wantOK:    true,
			wantPanel: PanelSettings,
		},
		{
			name:      "select replaces selection",
			actions:   func(c *Controller) { c.Select(a); c.Select(b) },
			wantID:    b,
			wantOK:    true,
			wantPanel: PanelSettings,
		},
		{
			name:      "clear after select",
			actions:   func(c *Controller) { c.Select(a); c.Clear() },
			wantOK:    false,
			wantPanel: PanelNodes,
		},
		{
			name:      "clear from none",
			actions:   func(c *Controller) { c.Clear() },
			wantOK:    false,
			wantPanel: PanelNodes,
		},
		{
			name:      "clear if other node keeps selection",
			actions:   func(c *Controller) { c.Select(a); c.ClearIf(b) },
			wantID:    a,
			wantOK:    true,
			wantPanel: PanelSettings,
		},
		{
			name:      "clear if selected node",
			actions:   func(c *Controller) { c.Select(a); c.ClearIf(a) },
			wantOK:    false,
			wantPanel: PanelNodes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			tt.actions(c)

			id, ok := c.Current()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.wantID.Equals(id))
			}
			assert.Equal(t, tt.wantPanel, c.Panel())
		})
	}
}

func TestController_ClearReportsPriorState(t *testing.T) {
	c := NewController()
	assert.False(t, c.Clear())

	c.Select(valueobjects.NewNodeID())
	assert.True(t, c.Clear())
}

func TestController_ConcurrentAccess(t *testing.T) {
	c := NewController()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Select(valueobjects.NewNodeID())
		}()
		go func() {
			defer wg.Done()
			c.Clear()
			_ = c.Panel()
		}()
	}
	wg.Wait()
}
