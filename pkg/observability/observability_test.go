package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "flowbuilder/pkg/errors"
)

func TestCollector_ObserveCommand(t *testing.T) {
	c := NewCollector("test")

	c.ObserveCommand("CreateNodeCommand", time.Millisecond, nil)
	c.ObserveCommand("CreateNodeCommand", time.Millisecond, pkgerrors.ErrUnknownNodeKind)
	c.ObserveCommand("ConnectNodesCommand", time.Millisecond, nil)
	c.ObserveCommand("ConnectNodesCommand", time.Millisecond,
		pkgerrors.ErrConnectionRejected.WithDetail("reason", "duplicate-source-handle"))
	c.ObserveCommand("SaveFlowCommand", time.Millisecond, pkgerrors.ErrFlowInvalid)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.NodesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.EdgesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConnectionsRejected.WithLabelValues("duplicate-source-handle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FlowSaves.WithLabelValues("FLOW_INVALID")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("CreateNodeCommand", "UNKNOWN_NODE_KIND")))
}

func TestCollector_ObserveQuery(t *testing.T) {
	c := NewCollector("test")

	c.ObserveQuery("GetFlowQuery", time.Millisecond, nil)
	c.ObserveQuery("GetFlowQuery", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Queries.WithLabelValues("GetFlowQuery", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Queries.WithLabelValues("GetFlowQuery", "error")))
}

func TestCollector_Middleware(t *testing.T) {
	c := NewCollector("test")

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/flows/{flowID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/flows/abc", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/flows/{flowID}", "418")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("test")
	c.RegisterSessionGauge("test", func() float64 { return 3 })
	c.ObserveCommand("CreateFlowCommand", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "test_commands_total"))
	assert.True(t, strings.Contains(body, "test_open_sessions 3"))
}

func TestTracer_Disabled(t *testing.T) {
	tracer := NewTracer("flowbuilder", false)
	called := false
	want := errors.New("failed")

	err := tracer.Trace(context.Background(), "command.X", func(ctx context.Context) error {
		called = true
		return want
	})

	assert.True(t, called)
	assert.Equal(t, want, err)
	tracer.AddAnnotation(context.Background(), "k", "v")
}
