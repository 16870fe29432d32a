package di

import (
	"context"

	"go.uber.org/zap"

	"flowbuilder/application/commands/bus"
	"flowbuilder/application/ports"
	querybus "flowbuilder/application/queries/bus"
	"flowbuilder/infrastructure/config"
	"flowbuilder/infrastructure/persistence/memory"
	"flowbuilder/interfaces/http/rest"
	pkgerrors "flowbuilder/pkg/errors"
	"flowbuilder/pkg/observability"
	"flowbuilder/pkg/ratelimit"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Sessions      *memory.SessionRepository
	SnapshotStore ports.SnapshotStore
	EventBus      ports.EventBus
	CommandBus    *bus.CommandBus
	QueryBus      *querybus.QueryBus
	Metrics       *observability.Collector
	Tracer        *observability.Tracer
	RateLimiter   *ratelimit.SlidingWindowLimiter
	ErrorHandler  *pkgerrors.ErrorHandler
}

// Router builds the HTTP router over the container's buses
func (c *Container) Router() *rest.Router {
	options := rest.Options{
		EnableCORS:     c.Config.EnableCORS,
		AllowedOrigins: c.Config.CORSAllowedOrigins,
		RequestTimeout: c.Config.RequestTimeout,
	}
	if c.RateLimiter != nil {
		options.RateLimiter = c.RateLimiter
	}

	return rest.NewRouter(
		c.CommandBus,
		c.QueryBus,
		c.Sessions,
		c.ErrorHandler,
		c.Metrics,
		options,
		c.Logger,
	)
}

// Start runs the background sweepers until ctx is cancelled
func (c *Container) Start(ctx context.Context) {
	go c.Sessions.Start(ctx, c.Config.SweepInterval)
	if c.RateLimiter != nil {
		go c.RateLimiter.Start(ctx)
	}
}
