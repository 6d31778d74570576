package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Metrics bundles the service's Prometheus collectors: generic HTTP metrics
// plus the domain counters the lease pipeline and billing flow report into.
type Metrics struct {
	registry *prometheus.Registry

	reqTotal *prometheus.CounterVec
	reqDurMS *prometheus.HistogramVec

	AnalysesCompleted prometheus.Counter
	AnalysesDenied    prometheus.Counter
	AdapterFailures   *prometheus.CounterVec
	WebhookEvents     *prometheus.CounterVec
	RateLimitDenials  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.reqTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_req_total",
		Help: "HTTP requests processed, partitioned by status code, method and route.",
	}, []string{"code", "method", "route"})
	m.reqDurMS = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_req_dur_ms",
		Help:    "HTTP request latencies in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"code", "method", "route"})

	m.AnalysesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lease_analyses_completed_total",
		Help: "Lease analyses stored successfully.",
	})
	m.AnalysesDenied = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lease_analyses_denied_total",
		Help: "Lease analyses denied by the access gate.",
	})
	m.AdapterFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adapter_failures_total",
		Help: "Upstream adapter calls that failed, by adapter name.",
	}, []string{"adapter"})
	m.WebhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment webhook events processed, by event type and outcome.",
	}, []string{"event_type", "outcome"})
	m.RateLimitDenials = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_denials_total",
		Help: "Requests denied by the sliding-window rate limiter, by scope.",
	}, []string{"scope"})

	m.registry.MustRegister(
		m.reqTotal, m.reqDurMS,
		m.AnalysesCompleted, m.AnalysesDenied,
		m.AdapterFailures, m.WebhookEvents, m.RateLimitDenials,
	)
	return m
}

// Middleware records per-request counters and latency, labeled by the gin
// route template (not the raw path, to bound cardinality).
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())
		m.reqTotal.WithLabelValues(code, c.Request.Method, route).Inc()
		m.reqDurMS.WithLabelValues(code, c.Request.Method, route).
			Observe(float64(time.Since(start).Milliseconds()))
	}
}

// Serve exposes /metrics on its own listener so the scrape endpoint never
// shares the public port.
func (m *Metrics) Serve(lc fx.Lifecycle, addr string, log *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("metrics listener starting", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("metrics listener error: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
)
