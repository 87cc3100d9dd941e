package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Collectors are created eagerly so services can record into them before (or
// without) Register being called, e.g. in unit tests.
var (
	SpamChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_spam_checks_total",
			Help: "Spam checks completed, by deciding method and verdict.",
		},
		[]string{"method", "verdict"},
	)

	DetectorFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_spam_detector_failures_total",
			Help: "Detectors that abstained because of an error or timeout.",
		},
		[]string{"method", "reason"},
	)

	DetectorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trust_spam_detector_duration_seconds",
			Help:    "Duration of individual spam detectors.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	AggregationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trust_score_aggregation_duration_seconds",
			Help:    "Duration of compatibility score aggregations, by grouping.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"grouping"},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trust_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trust_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trust_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trust_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)
)

// Register registers all collectors with the default registry. Call once at startup.
func Register(pool *pgxpool.Pool) {
	// DB pool gauges read live stats from pgxpool
	if pool != nil {
		prometheus.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "trust_db_connection_pool_active",
					Help: "Number of active database connections.",
				},
				func() float64 {
					return float64(pool.Stat().AcquiredConns())
				},
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "trust_db_connection_pool_idle",
					Help: "Number of idle database connections.",
				},
				func() float64 {
					return float64(pool.Stat().IdleConns())
				},
			),
		)
	}

	prometheus.MustRegister(
		SpamChecksTotal,
		DetectorFailures,
		DetectorDuration,
		AggregationDuration,
		CacheHits,
		CacheMisses,
		RequestDuration,
		RequestsInFlight,
	)
}

// ObserveSince records the seconds elapsed since start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Middleware records request duration and in-flight count for Prometheus.
func Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next(). Fiber
		// returns slices backed by the fasthttp buffer which can be reused.
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		status := strconv.Itoa(c.Response().StatusCode())
		RequestDuration.WithLabelValues(endpoint, method, status).Observe(time.Since(start).Seconds())
		RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	if strings.HasPrefix(path, "/api/scores/listings/") {
		return "/api/scores/listings/:listingId"
	}
	return path
}

// Handler serves the Prometheus /metrics endpoint via Fiber.
func Handler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
