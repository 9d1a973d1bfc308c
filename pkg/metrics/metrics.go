// Package metrics provides Prometheus instrumentation for the storefront.
//
// Wire it up once in app/routes:
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration tracks how long each HTTP request takes,
	// broken down by method, path, and status code.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mishil",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts all HTTP requests.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mishil",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestInFlight tracks how many requests are currently being served.
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mishil",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	// OrdersPlaced counts successfully committed orders.
	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mishil",
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Total orders placed.",
	})

	// OrderRevenue accumulates the total value of committed orders.
	OrderRevenue = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mishil",
		Subsystem: "orders",
		Name:      "revenue_total",
		Help:      "Cumulative revenue of placed orders.",
	})

	// StockConflicts counts order attempts rejected for insufficient stock.
	StockConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mishil",
		Subsystem: "orders",
		Name:      "stock_conflicts_total",
		Help:      "Order attempts rejected because stock was insufficient.",
	})

	// CacheHits / CacheMisses track catalog cache effectiveness.
	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mishil",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total catalog cache hits.",
	})
	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mishil",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total catalog cache misses.",
	})
)

// DefaultRegistry is the Prometheus registry used by the storefront.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		OrdersPlaced,
		OrderRevenue,
		StockConflicts,
		CacheHits,
		CacheMisses,
	)
}

// responseRecorder wraps http.ResponseWriter to capture the status code.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}

// Middleware records request duration, totals and in-flight gauge for every
// request.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			status := strconv.Itoa(rr.status)
			RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// Handler exposes the Prometheus metrics page. Mount it on GET /metrics.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}
