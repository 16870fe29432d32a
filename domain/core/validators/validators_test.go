package validators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowbuilder/domain/config"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

func newTestNode(t *testing.T) *entities.Node {
	t.Helper()
	data, err := valueobjects.NewNodeData(map[string]interface{}{"label": "Send Message"})
	require.NoError(t, err)
	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	node, err := entities.NewNode("textNode", pos, data)
	require.NoError(t, err)
	return node
}

func connect(source *entities.Node, sourceHandle string, target *entities.Node) *entities.Edge {
	return entities.NewEdge(entities.Connection{
		Source:       source.ID(),
		SourceHandle: sourceHandle,
		Target:       target.ID(),
	})
}

func TestConnectionValidator_Validate(t *testing.T) {
	a, b, c := newTestNode(t), newTestNode(t), newTestNode(t)

	tests := []struct {
		name     string
		allowAll bool
		edges    []*entities.Edge
		proposal entities.Connection
		want     ConnectionResult
	}{
		{
			name:     "empty edge set accepts",
			allowAll: true,
			proposal: entities.Connection{Source: a.ID(), SourceHandle: "out1", Target: b.ID()},
			want:     Accepted(),
		},
		{
			name:     "same source port rejected",
			allowAll: true,
			edges:    []*entities.Edge{connect(a, "out1", b)},
			proposal: entities.Connection{Source: a.ID(), SourceHandle: "out1", Target: c.ID()},
			want:     Rejected(ReasonDuplicateSourceHandle),
		},
		{
			name:     "other handle on same source accepted",
			allowAll: true,
			edges:    []*entities.Edge{connect(a, "out1", b)},
			proposal: entities.Connection{Source: a.ID(), SourceHandle: "out2", Target: c.ID()},
			want:     Accepted(),
		},
		{
			name:     "empty handles count as a port",
			allowAll: true,
			edges:    []*entities.Edge{connect(a, "", b)},
			proposal: entities.Connection{Source: a.ID(), SourceHandle: "", Target: c.ID()},
			want:     Rejected(ReasonDuplicateSourceHandle),
		},
		{
			name:     "multiple edges into one target accepted",
			allowAll: true,
			edges:    []*entities.Edge{connect(a, "out1", c)},
			proposal: entities.Connection{Source: b.ID(), SourceHandle: "out1", Target: c.ID()},
			want:     Accepted(),
		},
		{
			name:     "cycle accepted",
			allowAll: true,
			edges:    []*entities.Edge{connect(a, "out1", b)},
			proposal: entities.Connection{Source: b.ID(), SourceHandle: "out1", Target: a.ID()},
			want:     Accepted(),
		},
		{
			name:     "self loop accepted by default",
			allowAll: true,
			proposal: entities.Connection{Source: a.ID(), SourceHandle: "out1", Target: a.ID()},
			want:     Accepted(),
		},
		{
			name:     "self loop rejected when disabled",
			allowAll: false,
			proposal: entities.Connection{Source: a.ID(), SourceHandle: "out1", Target: a.ID()},
			want:     Rejected(ReasonSelfLoop),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultDomainConfig()
			cfg.AllowSelfConnections = tt.allowAll
			v := NewConnectionValidator(cfg)

			assert.Equal(t, tt.want, v.Validate(tt.edges, tt.proposal))
		})
	}
}

func TestConnectionResult_Err(t *testing.T) {
	assert.NoError(t, Accepted().Err())

	err := Rejected(ReasonDuplicateSourceHandle).Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrConnectionRejected))

	domainErr := pkgerrors.GetDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, "duplicate-source-handle", domainErr.Details["reason"])
	assert.Empty(t, pkgerrors.ErrConnectionRejected.Details, "sentinel must stay untouched")
}

func TestFlowValidator_Validate(t *testing.T) {
	a, b, c := newTestNode(t), newTestNode(t), newTestNode(t)

	tests := []struct {
		name         string
		nodes        []*entities.Node
		edges        []*entities.Edge
		wantValid    bool
		wantRootless []*entities.Node
	}{
		{
			name:      "empty flow is valid",
			wantValid: true,
		},
		{
			name:         "single node is valid",
			nodes:        []*entities.Node{a},
			wantValid:    true,
			wantRootless: []*entities.Node{a},
		},
		{
			name:         "two entry points are invalid",
			nodes:        []*entities.Node{a, b, c},
			edges:        []*entities.Edge{connect(a, "out1", b)},
			wantValid:    false,
			wantRootless: []*entities.Node{a, c},
		},
		{
			name:         "chain is valid",
			nodes:        []*entities.Node{a, b, c},
			edges:        []*entities.Edge{connect(a, "out1", b), connect(b, "out1", c)},
			wantValid:    true,
			wantRootless: []*entities.Node{a},
		},
		{
			name:         "two unconnected nodes are invalid",
			nodes:        []*entities.Node{a, b},
			wantValid:    false,
			wantRootless: []*entities.Node{a, b},
		},
		{
			name:      "full cycle has no entry point and is valid",
			nodes:     []*entities.Node{a, b},
			edges:     []*entities.Edge{connect(a, "out1", b), connect(b, "out1", a)},
			wantValid: true,
		},
	}

	v := NewFlowValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(entities.Snapshot{Nodes: tt.nodes, Edges: tt.edges})

			assert.Equal(t, tt.wantValid, result.Valid)
			if tt.wantValid {
				assert.Empty(t, result.Reason)
				assert.NoError(t, result.Err())
			} else {
				assert.Equal(t, ReasonMultipleEntryPoints, result.Reason)
				assert.True(t, errors.Is(result.Err(), pkgerrors.ErrFlowInvalid))
			}

			require.Len(t, result.RootlessNodes, len(tt.wantRootless))
			for i, n := range tt.wantRootless {
				assert.True(t, n.ID().Equals(result.RootlessNodes[i]))
			}
		})
	}
}

func TestFlowValidationResult_ErrDetails(t *testing.T) {
	a, b := newTestNode(t), newTestNode(t)
	result := NewFlowValidator().Validate(entities.Snapshot{Nodes: []*entities.Node{a, b}})

	domainErr := pkgerrors.GetDomainError(result.Err())
	require.NotNil(t, domainErr)
	assert.Equal(t, "FLOW_INVALID", domainErr.Code)
	assert.Equal(t, ReasonMultipleEntryPoints, domainErr.Details["reason"])
	assert.Equal(t, []string{a.ID().String(), b.ID().String()}, domainErr.Details["rootless_nodes"])
}
