package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeguide",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routeguide",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// RPC metrics
	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeguide",
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "Total route-guide calls completed, by method and outcome",
	}, []string{"method", "status"})

	RPCCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routeguide",
		Subsystem: "rpc",
		Name:      "call_duration_seconds",
		Help:      "Route-guide call duration in seconds",
		Buckets:   []float64{0.001, 0.01, 0.1, 1, 10, 60, 300},
	}, []string{"method"})

	RPCActiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "routeguide",
		Subsystem: "rpc",
		Name:      "active_streams",
		Help:      "Current number of in-flight streaming calls",
	})

	PointsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "routeguide",
		Subsystem: "routes",
		Name:      "points_recorded_total",
		Help:      "Total points received by route recording",
	})

	NotesAppended = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "routeguide",
		Subsystem: "chat",
		Name:      "notes_appended_total",
		Help:      "Total notes appended to the shared registry",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "routeguide",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeguide",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeguide",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "routeguide",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "routeguide",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "routeguide",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// ObserveCall records one completed route-guide call.
func ObserveCall(method, status string, elapsed time.Duration) {
	RPCCallsTotal.WithLabelValues(method, status).Inc()
	RPCCallDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
