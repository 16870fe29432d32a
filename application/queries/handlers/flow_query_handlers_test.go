package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"flowbuilder/application/ports"
	"flowbuilder/application/queries"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/registry"
	"flowbuilder/domain/core/selection"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

type stubSessions struct {
	session *aggregates.Session
}

func (s stubSessions) Save(context.Context, *aggregates.Session) error   { return nil }
func (s stubSessions) Delete(context.Context, valueobjects.FlowID) error { return nil }
func (s stubSessions) Count(context.Context) (int, error)                { return 1, nil }

func (s stubSessions) GetByID(_ context.Context, id valueobjects.FlowID) (*aggregates.Session, error) {
	if s.session == nil || s.session.ID() != id {
		return nil, pkgerrors.ErrFlowNotFound
	}
	return s.session, nil
}

type stubStore struct {
	saved *ports.SavedFlow
}

func (s stubStore) Save(context.Context, ports.SavedFlow) error { return nil }

func (s stubStore) Get(_ context.Context, id valueobjects.FlowID) (*ports.SavedFlow, error) {
	if s.saved == nil || s.saved.FlowID != id {
		return nil, pkgerrors.ErrSavedFlowNotFound
	}
	return s.saved, nil
}

func newSession(t *testing.T) *aggregates.Session {
	t.Helper()
	session, err := aggregates.NewSession("Support", registry.Default(), nil)
	require.NoError(t, err)
	return session
}

func addNode(t *testing.T, session *aggregates.Session) *entities.Node {
	t.Helper()
	pos, err := valueobjects.NewPosition(1, 2)
	require.NoError(t, err)
	node, err := session.Flow().CreateNode(registry.KindText, pos)
	require.NoError(t, err)
	return node
}

func TestGetFlowHandler(t *testing.T) {
	session := newSession(t)
	a := addNode(t, session)
	b := addNode(t, session)
	_, err := session.Flow().ProposeEdge(entities.Connection{Source: a.ID(), Target: b.ID()})
	require.NoError(t, err)
	session.SelectNode(b.ID())

	h := NewGetFlowHandler(stubSessions{session: session})
	res, err := h.Handle(context.Background(), queries.GetFlowQuery{FlowID: session.ID().String()})
	require.NoError(t, err)

	view := res.(queries.FlowView)
	assert.Equal(t, "Support", view.Name)
	require.Len(t, view.Nodes, 2)
	require.Len(t, view.Edges, 1)
	assert.Equal(t, a.ID().String(), view.Nodes[0].ID)
	assert.Equal(t, "Send Message", view.Nodes[0].Data["label"])
	assert.Equal(t, a.ID().String(), view.Edges[0].Source)
	assert.Equal(t, b.ID().String(), view.SelectedNodeID)
	assert.Equal(t, string(selection.PanelSettings), view.Panel)
}

func TestGetFlowHandler_NotFound(t *testing.T) {
	h := NewGetFlowHandler(stubSessions{})
	_, err := h.Handle(context.Background(), queries.GetFlowQuery{FlowID: valueobjects.NewFlowID().String()})
	assert.True(t, errors.Is(err, pkgerrors.ErrFlowNotFound))
}

func TestGetNodeHandler(t *testing.T) {
	session := newSession(t)
	node := addNode(t, session)
	h := NewGetNodeHandler(stubSessions{session: session})

	res, err := h.Handle(context.Background(), queries.GetNodeQuery{FlowID: session.ID().String(), NodeID: node.ID().String()})
	require.NoError(t, err)
	assert.Equal(t, registry.KindText, res.(queries.NodeView).Kind)

	_, err = h.Handle(context.Background(), queries.GetNodeQuery{FlowID: session.ID().String(), NodeID: valueobjects.NewNodeID().String()})
	assert.True(t, errors.Is(err, pkgerrors.ErrNodeNotFound))
}

func TestValidateFlowHandler(t *testing.T) {
	session := newSession(t)
	h := NewValidateFlowHandler(stubSessions{session: session})
	query := queries.ValidateFlowQuery{FlowID: session.ID().String()}

	res, err := h.Handle(context.Background(), query)
	require.NoError(t, err)
	assert.True(t, res.(queries.ValidationView).Valid)

	a := addNode(t, session)
	b := addNode(t, session)

	res, err = h.Handle(context.Background(), query)
	require.NoError(t, err)
	view := res.(queries.ValidationView)
	assert.False(t, view.Valid)
	assert.Equal(t, "Cannot save flow", view.Message)
	assert.Equal(t, []string{a.ID().String(), b.ID().String()}, view.RootlessNodes)

	_, err = session.Flow().ProposeEdge(entities.Connection{Source: a.ID(), Target: b.ID()})
	require.NoError(t, err)

	res, err = h.Handle(context.Background(), query)
	require.NoError(t, err)
	assert.True(t, res.(queries.ValidationView).Valid)
}

func TestGetSelectionHandler(t *testing.T) {
	session := newSession(t)
	node := addNode(t, session)
	h := NewGetSelectionHandler(stubSessions{session: session})
	query := queries.GetSelectionQuery{FlowID: session.ID().String()}

	res, err := h.Handle(context.Background(), query)
	require.NoError(t, err)
	view := res.(queries.SelectionView)
	assert.Equal(t, string(selection.PanelNodes), view.Panel)
	assert.Nil(t, view.Node)

	session.SelectNode(node.ID())
	res, err = h.Handle(context.Background(), query)
	require.NoError(t, err)
	view = res.(queries.SelectionView)
	assert.Equal(t, string(selection.PanelSettings), view.Panel)
	require.NotNil(t, view.Node)
	assert.Equal(t, node.ID().String(), view.Node.ID)
}

func TestGetSavedFlowHandler(t *testing.T) {
	session := newSession(t)
	addNode(t, session)
	saved := &ports.SavedFlow{
		FlowID:   session.ID(),
		Name:     session.Name(),
		Version:  session.Flow().Version(),
		Snapshot: session.Flow().Snapshot(),
		SavedAt:  time.Now(),
	}

	h := NewGetSavedFlowHandler(stubStore{saved: saved})
	res, err := h.Handle(context.Background(), queries.GetSavedFlowQuery{FlowID: session.ID().String()})
	require.NoError(t, err)
	view := res.(queries.SavedFlowView)
	assert.Equal(t, "Support", view.Name)
	assert.Len(t, view.Nodes, 1)

	_, err = h.Handle(context.Background(), queries.GetSavedFlowQuery{FlowID: valueobjects.NewFlowID().String()})
	assert.True(t, errors.Is(err, pkgerrors.ErrSavedFlowNotFound))
}

func TestListNodeKindsHandler(t *testing.T) {
	h := NewListNodeKindsHandler(registry.Default(), zaptest.NewLogger(t))

	res, err := h.Handle(context.Background(), queries.ListNodeKindsQuery{})
	require.NoError(t, err)

	kinds := res.([]registry.NodeKindDescriptor)
	require.Len(t, kinds, 1)
	assert.Equal(t, registry.KindText, kinds[0].Kind)
	assert.Equal(t, "Send Message", kinds[0].DisplayName)
}
