package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	OrdersImported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_imported_total",
			Help: "Orders inserted from platform exports.",
		},
		[]string{"platform"},
	)
	OrdersSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_skipped_total",
			Help: "Orders skipped on import (duplicates, unparseable rows, outside the shift window).",
		},
		[]string{"platform", "reason"},
	)
	OrdersLinked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_linked_total",
			Help: "Orders reassigned to a shift's employee.",
		},
	)
	ProfitDivergence = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "profit_divergence_total",
			Help: "Reports where balance-based and order-based profit disagree.",
		},
	)
)

func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestCount, RequestDuration,
		OrdersImported, OrdersSkipped, OrdersLinked, ProfitDivergence,
	)
}

func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Middleware пишет счётчик и длительность по шаблону маршрута chi.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []string{r.Method, path, strconv.Itoa(status)}
		RequestCount.WithLabelValues(labels...).Inc()
		RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}
