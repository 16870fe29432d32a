package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"flowbuilder/application/commands"
	"flowbuilder/application/commands/bus"
	commandhandlers "flowbuilder/application/commands/handlers"
	"flowbuilder/application/ports"
	"flowbuilder/application/queries"
	querybus "flowbuilder/application/queries/bus"
	queryhandlers "flowbuilder/application/queries/handlers"
	domainconfig "flowbuilder/domain/config"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/registry"
	"flowbuilder/infrastructure/config"
	"flowbuilder/infrastructure/messaging"
	"flowbuilder/infrastructure/messaging/eventbridge"
	"flowbuilder/infrastructure/persistence/dynamodb"
	"flowbuilder/infrastructure/persistence/memory"
	"flowbuilder/infrastructure/serialization"
	pkgerrors "flowbuilder/pkg/errors"
	"flowbuilder/pkg/observability"
	"flowbuilder/pkg/ratelimit"
)

const serviceName = "flowbuilder"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideDomainConfig selects the business-rule preset for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	domainCfg := domainconfig.LoadDomainConfig(cfg.Environment)
	if err := domainCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid domain configuration: %w", err)
	}
	return domainCfg, nil
}

// ProvideRegistry returns the built-in node kinds
func ProvideRegistry() *registry.Registry {
	return registry.Default()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideSerializer creates the snapshot codec; the cleanup releases the
// zstd encoder and decoder
func ProvideSerializer(cfg *config.Config) (*serialization.Serializer, func(), error) {
	compression, err := serialization.ParseCompression(cfg.SnapshotCompression)
	if err != nil {
		return nil, nil, err
	}
	serializer, err := serialization.NewSerializer(compression)
	if err != nil {
		return nil, nil, err
	}
	return serializer, serializer.Close, nil
}

// ProvideSnapshotStore picks the backend that receives saved flows
func ProvideSnapshotStore(
	cfg *config.Config,
	client *awsdynamodb.Client,
	serializer *serialization.Serializer,
	logger *zap.Logger,
) ports.SnapshotStore {
	if cfg.SnapshotStore == config.SnapshotStoreDynamoDB {
		return dynamodb.NewSnapshotStore(client, cfg.DynamoDBTable, serializer, logger)
	}
	return memory.NewSnapshotStore()
}

// ProvideEventBus picks where domain events go
func ProvideEventBus(
	cfg *config.Config,
	eventBridgeClient *awseventbridge.Client,
	dynamoClient *awsdynamodb.Client,
	logger *zap.Logger,
) ports.EventBus {
	switch cfg.EventPublisher {
	case config.EventPublisherEventBridge:
		return eventbridge.NewPublisher(eventBridgeClient, cfg.EventBusName, logger)
	case config.EventPublisherDynamoDB:
		return dynamodb.NewEventJournal(dynamoClient, cfg.DynamoDBTable, cfg.EventRetention, logger)
	default:
		return messaging.NewLogPublisher(logger)
	}
}

// ProvideSessionRepository creates the session repository. Expired sessions
// are closed and their flow.closed event is published.
func ProvideSessionRepository(cfg *config.Config, eventBus ports.EventBus, logger *zap.Logger) *memory.SessionRepository {
	repo := memory.NewSessionRepository(cfg.SessionTTL, logger)
	repo.OnExpire(func(ctx context.Context, session *aggregates.Session) {
		session.Close("expired")
		if err := eventBus.PublishBatch(ctx, session.DrainEvents()); err != nil {
			logger.Warn("Failed to publish events for expired session",
				zap.String("flowID", session.ID().String()),
				zap.Error(err),
			)
		}
	})
	return repo
}

// ProvideMetrics creates the Prometheus collector, or nil when disabled
func ProvideMetrics(cfg *config.Config, sessions ports.SessionRepository) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	collector := observability.NewCollector(serviceName)
	collector.RegisterSessionGauge(serviceName, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		n, err := sessions.Count(ctx)
		if err != nil {
			return 0
		}
		return float64(n)
	})
	return collector
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(serviceName, cfg.EnableTracing)
}

// ProvideRateLimiter creates the per-client request limiter, or nil when
// RATE_LIMIT_PER_MINUTE is 0
func ProvideRateLimiter(cfg *config.Config) *ratelimit.SlidingWindowLimiter {
	if cfg.RateLimitPerMinute == 0 {
		return nil
	}
	return ratelimit.NewSlidingWindowLimiter(cfg.RateLimitPerMinute, time.Minute)
}

// ProvideErrorHandler creates the HTTP error renderer
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	sessions ports.SessionRepository,
	store ports.SnapshotStore,
	eventBus ports.EventBus,
	reg *registry.Registry,
	domainCfg *domainconfig.DomainConfig,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	middlewares := []bus.Middleware{bus.LoggingMiddleware(logger)}
	if metrics != nil {
		middlewares = append(middlewares, bus.MetricsMiddleware(metrics))
	}
	if tracer.Enabled() {
		middlewares = append(middlewares, bus.TracingMiddleware(tracer))
	}
	commandBus := bus.NewCommandBus(middlewares...)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateFlowCommand{}, commandhandlers.NewCreateFlowHandler(sessions, eventBus, reg, domainCfg, logger)},
		{commands.CloseFlowCommand{}, commandhandlers.NewCloseFlowHandler(sessions, eventBus, logger)},
		{commands.SaveFlowCommand{}, commandhandlers.NewSaveFlowHandler(sessions, store, eventBus, logger)},
		{commands.CreateNodeCommand{}, commandhandlers.NewCreateNodeHandler(sessions, eventBus, logger)},
		{commands.UpdateNodeDataCommand{}, commandhandlers.NewUpdateNodeDataHandler(sessions, eventBus, logger)},
		{commands.MoveNodeCommand{}, commandhandlers.NewMoveNodeHandler(sessions, eventBus, logger)},
		{commands.DeleteNodeCommand{}, commandhandlers.NewDeleteNodeHandler(sessions, eventBus, logger)},
		{commands.ConnectNodesCommand{}, commandhandlers.NewConnectNodesHandler(sessions, eventBus, logger)},
		{commands.DeleteEdgeCommand{}, commandhandlers.NewDeleteEdgeHandler(sessions, eventBus, logger)},
		{commands.SelectNodeCommand{}, commandhandlers.NewSelectNodeHandler(sessions, eventBus, logger)},
		{commands.ClearSelectionCommand{}, commandhandlers.NewClearSelectionHandler(sessions, eventBus, logger)},
	}
	for _, r := range registrations {
		if err := commandBus.Register(r.cmd, r.handler); err != nil {
			return nil, fmt.Errorf("register %s: %w", bus.CommandName(r.cmd), err)
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	sessions ports.SessionRepository,
	store ports.SnapshotStore,
	reg *registry.Registry,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	var middlewares []querybus.Middleware
	if metrics != nil {
		middlewares = append(middlewares, querybus.NewMetricsMiddleware(metrics))
	}
	queryBus := querybus.NewQueryBus(middlewares...)

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetFlowQuery{}, queryhandlers.NewGetFlowHandler(sessions)},
		{queries.GetNodeQuery{}, queryhandlers.NewGetNodeHandler(sessions)},
		{queries.ValidateFlowQuery{}, queryhandlers.NewValidateFlowHandler(sessions)},
		{queries.GetSelectionQuery{}, queryhandlers.NewGetSelectionHandler(sessions)},
		{queries.GetSavedFlowQuery{}, queryhandlers.NewGetSavedFlowHandler(store)},
		{queries.ListNodeKindsQuery{}, queryhandlers.NewListNodeKindsHandler(reg, logger)},
	}
	for _, r := range registrations {
		if err := queryBus.Register(r.query, r.handler); err != nil {
			return nil, fmt.Errorf("register %T: %w", r.query, err)
		}
	}

	return queryBus, nil
}
