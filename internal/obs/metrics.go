package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	invitesIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invites_issued_total",
		Help: "Invites created since process start.",
	})

	invitesExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invites_expired_total",
		Help: "Invites reaped after their deadline passed.",
	})
)

// Init registers service metrics with the default registry.
func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration,
		invitesIssued, invitesExpired)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// InviteIssued increments the invite counter.
func InviteIssued() { invitesIssued.Inc() }

// InvitesReaped adds to the expired-invite counter.
func InvitesReaped(n int64) {
	if n > 0 {
		invitesExpired.Add(float64(n))
	}
}

// CanonicalPath collapses request paths so metric cardinality stays bounded.
// Token-bearing redemption endpoints keep their path; everything unknown
// falls back to "/other".
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	switch path {
	case "/", "/healthz", "/readyz", "/metrics", "/v1/info",
		"/register", "/login", "/logout", "/profile",
		"/invite", "/accept-invite", "/decline-invite":
		return path
	}
	return "/other"
}

// Instrument wraps a handler with in-flight, count and latency metrics.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter records the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
