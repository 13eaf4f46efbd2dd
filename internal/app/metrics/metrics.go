package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "picasso",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "picasso",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "picasso",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	appOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "picasso",
			Subsystem: "apps",
			Name:      "operations_total",
			Help:      "Total number of app lifecycle operations.",
		},
		[]string{"operation", "outcome"},
	)

	reconcilerSweeps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "picasso",
			Subsystem: "reconciler",
			Name:      "sweeps_total",
			Help:      "Total number of reconciliation sweeps.",
		},
		[]string{"outcome"},
	)

	reconcilerOrphans = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "picasso",
			Subsystem: "reconciler",
			Name:      "orphaned_remote_apps_total",
			Help:      "Remote apps found without a registry record.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		appOperations,
		reconcilerSweeps,
		reconcilerOrphans,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordAppOperation records an app lifecycle operation outcome.
func RecordAppOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	appOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordReconcilerSweep records a reconciliation sweep and how many orphaned
// remote apps it found.
func RecordReconcilerSweep(orphans int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	reconcilerSweeps.WithLabelValues(outcome).Inc()
	if orphans > 0 {
		reconcilerOrphans.Add(float64(orphans))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses project and app identifiers so metric labels stay
// low-cardinality.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "v1" {
		return "/" + parts[0]
	}
	switch {
	case len(parts) >= 4 && parts[2] == "apps":
		return "/v1/:project/apps/:app"
	case len(parts) == 3 && parts[2] == "apps":
		return "/v1/:project/apps"
	default:
		return "/v1"
	}
}
