package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDomainError_BuildersDoNotMutateSentinel(t *testing.T) {
	decorated := ErrConnectionRejected.
		WithMessage("Connection was rejected: self-loop").
		WithDetail("reason", "self-loop")

	assert.Equal(t, "Connection was rejected", ErrConnectionRejected.Message)
	assert.Empty(t, ErrConnectionRejected.Details)

	reason, ok := decorated.Detail("reason")
	assert.True(t, ok)
	assert.Equal(t, "self-loop", reason)
	assert.Equal(t, http.StatusConflict, decorated.StatusCode)
}

func TestDomainError_IsMatchesTypeAndCode(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("command handler failed: %w", ErrNodeNotFound.WithDetail("node_id", "n1").WithCause(cause))

	assert.True(t, errors.Is(err, ErrNodeNotFound))
	assert.False(t, errors.Is(err, ErrEdgeNotFound))
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  *DomainError
		want int
	}{
		{ErrUnknownNodeKind, http.StatusBadRequest},
		{ErrFlowNotFound, http.StatusNotFound},
		{ErrConnectionRejected, http.StatusConflict},
		{ErrFlowInvalid, http.StatusUnprocessableEntity},
		{ErrFlowLimitExceeded, http.StatusUnprocessableEntity},
		{NewDomainError(DomainInfrastructureError, "X", "x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode)
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ctx"))

	domainWrapped := Wrap(ErrFlowInvalid, "save")
	assert.True(t, errors.Is(domainWrapped, ErrFlowInvalid))

	plain := Wrap(errors.New("disk full"), "save")
	assert.True(t, IsType(plain, ErrorTypeInternal))
}

func newHandler(t *testing.T) (*ErrorHandler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return NewErrorHandler(zap.New(core), false), logs
}

func serve(h *ErrorHandler, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flows/f/edges", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.Handle(rec, req, err)

	var body ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestErrorHandler_DomainError(t *testing.T) {
	h, logs := newHandler(t)

	rec, body := serve(h, fmt.Errorf("command handler failed: %w",
		ErrConnectionRejected.WithDetail("reason", "duplicate-source-handle")))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, body.Error)
	assert.Equal(t, "CONFLICT", body.Type)
	assert.Equal(t, "CONNECTION_REJECTED", body.Code)
	assert.Equal(t, "duplicate-source-handle", body.Details["reason"])
	assert.Equal(t, "req-1", body.RequestID)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
}

func TestErrorHandler_AppError(t *testing.T) {
	h, logs := newHandler(t)

	rec, body := serve(h, NewDatabaseError("save snapshot", errors.New("timeout")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, string(ErrorTypeDatabase), body.Type)
	assert.NotContains(t, body.Details, "stack_trace")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.ErrorLevel, logs.All()[0].Level)
}

func TestErrorHandler_UnknownErrorHidesMessage(t *testing.T) {
	h, _ := newHandler(t)

	rec, body := serve(h, errors.New("secret connection string"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An internal error occurred", body.Message)
}

func TestErrorHandler_MiddlewareRecoversPanics(t *testing.T) {
	h, _ := newHandler(t)
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "panic: nil map")
}

func TestErrorHandler_HandleStatus(t *testing.T) {
	h, _ := newHandler(t)
	rec := httptest.NewRecorder()

	h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusTooManyRequests, "Too many requests")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"RATE_LIMITED"`)
}
