package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_rate_limit_rejections_total",
			Help: "Requests rejected by a per-client rate limiter",
		},
		[]string{"limiter"},
	)

	RateLimitErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_rate_limit_errors_total",
			Help: "Requests let through because the rate limiter failed",
		},
		[]string{"limiter"},
	)

	// Recommendation Metrics
	RecommendationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_recommendation_outcomes_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "no_eligible_books", "all_duplicates", "error"
	)

	RecommendationsFiltered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_recommendations_filtered_total",
			Help: "AI suggestions dropped because the catalog already holds them",
		},
	)

	RecommendedBooksAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_recommended_books_added_total",
			Help: "Books added to the catalog from a recommendation",
		},
	)

	// AI Collaborator Metrics
	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_ai_request_duration_seconds",
			Help:    "Duration of chat-completion calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"status"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "library_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_circuit_breaker_requests_total",
			Help: "Requests passing through a circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)
)

// RecordHTTPRequest records one finished request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAIRequest records the latency of a chat-completion call.
func RecordAIRequest(status string, duration time.Duration) {
	AIRequestDuration.WithLabelValues(status).Observe(duration.Seconds())
}
