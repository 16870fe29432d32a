//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"flowbuilder/application/ports"
	"flowbuilder/infrastructure/config"
	"flowbuilder/infrastructure/persistence/memory"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideRegistry,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideSerializer,
	ProvideSnapshotStore,
	ProvideEventBus,
	ProvideSessionRepository,
	wire.Bind(new(ports.SessionRepository), new(*memory.SessionRepository)),
	ProvideMetrics,
	ProvideTracer,
	ProvideRateLimiter,
	ProvideErrorHandler,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
