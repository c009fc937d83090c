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

	enrichmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichments_total",
			Help: "Total number of enrichment attempts",
		},
		[]string{"field", "source", "status"},
	)

	creditsSpentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credits_spent_total",
			Help: "Total credits deducted",
		},
		[]string{"credit_type"},
	)

	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total webhook events received",
		},
		[]string{"provider", "event"},
	)

	campaignTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_transitions_total",
			Help: "Total recipient status transitions applied",
		},
		[]string{"channel", "status"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
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

func RecordEnrichment(field, source, status string) {
	enrichmentsTotal.WithLabelValues(field, source, status).Inc()
}

func RecordCreditsSpent(creditType string, amount int) {
	creditsSpentTotal.WithLabelValues(creditType).Add(float64(amount))
}

func RecordWebhookEvent(provider, event string) {
	webhookEventsTotal.WithLabelValues(provider, event).Inc()
}

func RecordCampaignTransition(channel, status string, rows int) {
	campaignTransitionsTotal.WithLabelValues(channel, status).Add(float64(rows))
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
