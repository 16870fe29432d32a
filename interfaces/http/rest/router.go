package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"flowbuilder/application/commands/bus"
	"flowbuilder/application/ports"
	querybus "flowbuilder/application/queries/bus"
	"flowbuilder/interfaces/http/rest/handlers"
	"flowbuilder/interfaces/http/rest/middleware"
	"flowbuilder/pkg/errors"
	"flowbuilder/pkg/observability"
	"flowbuilder/pkg/utils"
)

// Options configures the router's cross-cutting behavior
type Options struct {
	EnableCORS     bool
	AllowedOrigins []string
	RequestTimeout time.Duration

	// RateLimiter, when set, limits /api/v1 requests per client IP
	RateLimiter middleware.Limiter
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	sessions     ports.SessionRepository
	errorHandler *errors.ErrorHandler
	metrics      *observability.Collector
	options      Options
	logger       *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	sessions ports.SessionRepository,
	errorHandler *errors.ErrorHandler,
	metrics *observability.Collector,
	options Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		sessions:     sessions,
		errorHandler: errorHandler,
		metrics:      metrics,
		options:      options,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.RequestIDHeader)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(rt.metrics.Middleware)
	}
	if rt.options.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(rt.options.RequestTimeout))
	}

	if rt.options.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.options.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Location"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	flowHandler := handlers.NewFlowHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
	nodeHandler := handlers.NewNodeHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
	edgeHandler := handlers.NewEdgeHandler(rt.commandBus, rt.errorHandler, rt.logger)
	selectionHandler := handlers.NewSelectionHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		if rt.options.RateLimiter != nil {
			r.Use(middleware.RateLimit(rt.options.RateLimiter, rt.errorHandler, rt.logger))
		}

		r.Get("/node-kinds", flowHandler.ListNodeKinds)

		r.Route("/flows", func(r chi.Router) {
			r.Post("/", flowHandler.CreateFlow)

			r.Route("/{flowID}", func(r chi.Router) {
				r.Get("/", flowHandler.GetFlow)
				r.Delete("/", flowHandler.CloseFlow)
				r.Get("/validation", flowHandler.ValidateFlow)
				r.Post("/save", flowHandler.SaveFlow)
				r.Get("/saved", flowHandler.GetSavedFlow)

				r.Route("/nodes", func(r chi.Router) {
					r.Post("/", nodeHandler.CreateNode)
					r.Get("/{nodeID}", nodeHandler.GetNode)
					r.Patch("/{nodeID}/data", nodeHandler.UpdateNodeData)
					r.Put("/{nodeID}/position", nodeHandler.MoveNode)
					r.Delete("/{nodeID}", nodeHandler.DeleteNode)
				})

				r.Route("/edges", func(r chi.Router) {
					r.Post("/", edgeHandler.ConnectNodes)
					r.Delete("/{edgeID}", edgeHandler.DeleteEdge)
				})

				r.Route("/selection", func(r chi.Router) {
					r.Get("/", selectionHandler.GetSelection)
					r.Put("/", selectionHandler.SelectNode)
					r.Delete("/", selectionHandler.ClearSelection)
				})
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","time":"` + utils.NowRFC3339() + `"}`))
}

// readinessCheck reports ready once the session repository answers
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	if _, err := rt.sessions.Count(ctx); err != nil {
		rt.errorHandler.Handle(w, req, errors.NewUnavailableError("sessions").WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
