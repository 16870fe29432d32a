package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowbuilder/domain/config"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/registry"
	"flowbuilder/domain/core/selection"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/domain/events"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	session, err := NewSession("Onboarding", registry.Default(), config.DefaultDomainConfig())
	require.NoError(t, err)
	return session
}

func TestSession_SelectedNodeFollowsSelection(t *testing.T) {
	session := newTestSession(t)
	node := addNode(t, session.Flow())

	_, ok := session.SelectedNode()
	assert.False(t, ok)
	assert.Equal(t, selection.PanelNodes, session.Panel())

	session.SelectNode(node.ID())

	selected, ok := session.SelectedNode()
	require.True(t, ok)
	assert.True(t, node.ID().Equals(selected.ID()))
	assert.Equal(t, selection.PanelSettings, session.Panel())

	session.ClearSelection()
	_, ok = session.SelectedNode()
	assert.False(t, ok)
}

func TestSession_SelectUnknownNodeIsAllowed(t *testing.T) {
	session := newTestSession(t)
	ghost := valueobjects.NewNodeID()

	session.SelectNode(ghost)

	current, ok := session.Selection().Current()
	assert.True(t, ok)
	assert.True(t, ghost.Equals(current))
	_, bound := session.SelectedNode()
	assert.False(t, bound)
}

func TestSession_RemoveNodeClearsItsSelection(t *testing.T) {
	session := newTestSession(t)
	a := addNode(t, session.Flow())
	b := addNode(t, session.Flow())
	_, err := session.Flow().ProposeEdge(entities.Connection{Source: a.ID(), Target: b.ID()})
	require.NoError(t, err)

	session.SelectNode(b.ID())
	removed, err := session.RemoveNode(b.ID())
	require.NoError(t, err)

	assert.Len(t, removed, 1)
	_, ok := session.Selection().Current()
	assert.False(t, ok)
	assert.Equal(t, 0, session.Flow().EdgeCount())
}

func TestSession_RemoveOtherNodeKeepsSelection(t *testing.T) {
	session := newTestSession(t)
	a := addNode(t, session.Flow())
	b := addNode(t, session.Flow())

	session.SelectNode(a.ID())
	_, err := session.RemoveNode(b.ID())
	require.NoError(t, err)

	current, ok := session.Selection().Current()
	assert.True(t, ok)
	assert.True(t, a.ID().Equals(current))
}

func TestSession_DrainEvents(t *testing.T) {
	session := newTestSession(t)
	node := addNode(t, session.Flow())
	session.SelectNode(node.ID())
	session.ClearSelection()
	session.ClearSelection()

	assert.Equal(t, []string{
		events.TypeFlowCreated,
		events.TypeNodeCreated,
		events.TypeNodeSelected,
		events.TypeSelectionCleared,
	}, eventTypes(session.DrainEvents()))
	assert.Empty(t, session.GetUncommittedEvents())

	session.Close("closed")
	assert.Equal(t, []string{events.TypeFlowClosed}, eventTypes(session.DrainEvents()))
}
