package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_ingested_total",
			Help: "Total number of leads written through the ingest endpoint",
		},
	)

	delayedLeads = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "delayed_leads",
			Help: "Delayed leads by follow-up category, from the last scan",
		},
		[]string{"category"},
	)

	configChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_changes_total",
			Help: "Total number of stage/status vocabulary edits",
		},
		[]string{"kind", "action"},
	)

	notificationsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "change_notifications_published_total",
			Help: "Total number of change notifications published",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordLeadsIngested(count int) {
	leadsIngested.Add(float64(count))
}

func SetDelayedLeads(category string, count int) {
	delayedLeads.WithLabelValues(category).Set(float64(count))
}

func RecordConfigChange(kind, action string) {
	configChanges.WithLabelValues(kind, action).Inc()
}

func RecordNotificationPublished() {
	notificationsPublished.Inc()
}
