package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkgerrors "flowbuilder/pkg/errors"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Bus metrics
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Queries         *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec

	// Business metrics
	NodesCreated        prometheus.Counter
	EdgesCreated        prometheus.Counter
	ConnectionsRejected *prometheus.CounterVec
	FlowSaves           *prometheus.CounterVec
}

// NewCollector creates a metrics collector with its own registry
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by outcome",
		}, []string{"command", "outcome"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command execution time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries executed, by outcome",
		}, []string{"query", "outcome"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query execution time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		NodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_created_total",
			Help:      "Total number of nodes created",
		}),
		EdgesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_created_total",
			Help:      "Total number of edges committed",
		}),
		ConnectionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Proposed connections rejected, by reason",
		}, []string{"reason"}),
		FlowSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_saves_total",
			Help:      "Save attempts, by outcome",
		}, []string{"outcome"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.Commands,
		c.CommandDuration,
		c.Queries,
		c.QueryDuration,
		c.NodesCreated,
		c.EdgesCreated,
		c.ConnectionsRejected,
		c.FlowSaves,
	)

	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RegisterSessionGauge exposes the number of open sessions
func (c *Collector) RegisterSessionGauge(namespace string, count func() float64) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_sessions",
		Help:      "Number of open editing sessions",
	}, count))
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveCommand records one executed command
func (c *Collector) ObserveCommand(commandType string, duration time.Duration, err error) {
	c.Commands.WithLabelValues(commandType, outcome(err)).Inc()
	c.CommandDuration.WithLabelValues(commandType).Observe(duration.Seconds())

	switch commandType {
	case "CreateNodeCommand":
		if err == nil {
			c.NodesCreated.Inc()
		}
	case "ConnectNodesCommand":
		if err == nil {
			c.EdgesCreated.Inc()
		} else if reason := rejectionReason(err); reason != "" {
			c.ConnectionsRejected.WithLabelValues(reason).Inc()
		}
	case "SaveFlowCommand":
		c.FlowSaves.WithLabelValues(outcome(err)).Inc()
	}
}

// ObserveQuery records one executed query
func (c *Collector) ObserveQuery(queryType string, duration time.Duration, err error) {
	c.Queries.WithLabelValues(queryType, outcome(err)).Inc()
	c.QueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
}

// Middleware records request counts and latency by chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// outcome is "success", the domain error code, or "error"
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if domainErr := pkgerrors.GetDomainError(err); domainErr != nil {
		return domainErr.Code
	}
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		return string(appErr.Type)
	}
	return "error"
}

func rejectionReason(err error) string {
	domainErr := pkgerrors.GetDomainError(err)
	if domainErr == nil || !domainErr.Is(pkgerrors.ErrConnectionRejected) {
		return ""
	}
	reason, _ := domainErr.Detail("reason")
	s, _ := reason.(string)
	return s
}
