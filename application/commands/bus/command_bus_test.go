package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type pingCommand struct {
	Name string
}

func (c pingCommand) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type recordingMetrics struct {
	observed []string
	failures int
}

func (m *recordingMetrics) ObserveCommand(commandType string, _ time.Duration, err error) {
	m.observed = append(m.observed, commandType)
	if err != nil {
		m.failures++
	}
}

func TestCommandBus_Send(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		return "pong " + cmd.(pingCommand).Name, nil
	})))

	result, err := b.Send(context.Background(), pingCommand{Name: "a"})

	require.NoError(t, err)
	assert.Equal(t, "pong a", result)
}

func TestCommandBus_ValidatesBeforeDispatch(t *testing.T) {
	called := false
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		called = true
		return nil, nil
	})))

	_, err := b.Send(context.Background(), pingCommand{})

	assert.Error(t, err)
	assert.False(t, called)
}

func TestCommandBus_UnknownCommand(t *testing.T) {
	_, err := NewCommandBus().Send(context.Background(), pingCommand{Name: "a"})
	assert.True(t, errors.Is(err, ErrHandlerNotFound))
}

func TestCommandBus_DuplicateRegistration(t *testing.T) {
	b := NewCommandBus()
	h := CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) { return nil, nil })

	require.NoError(t, b.Register(pingCommand{}, h))
	assert.Error(t, b.Register(pingCommand{}, h))
}

func TestCommandBus_HandlerErrorsKeepIdentity(t *testing.T) {
	sentinel := errors.New("boom")
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		return nil, sentinel
	})))

	_, err := b.Send(context.Background(), pingCommand{Name: "a"})
	assert.True(t, errors.Is(err, sentinel))
}

func TestCommandBus_MiddlewareOrder(t *testing.T) {
	var order []string
	trace := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	metrics := &recordingMetrics{}
	b := NewCommandBus(trace("first"), trace("second"), LoggingMiddleware(zaptest.NewLogger(t)), MetricsMiddleware(metrics))
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		order = append(order, "handler")
		return nil, nil
	})))

	_, err := b.Send(context.Background(), pingCommand{Name: "a"})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "handler"}, order)
	assert.Equal(t, []string{"pingCommand"}, metrics.observed)
	assert.Zero(t, metrics.failures)
}
