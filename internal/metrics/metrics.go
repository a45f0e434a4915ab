// Package metrics registers the Prometheus collectors exposed on /metrics.
// All metrics are prefixed with "codeclip_".
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CompletionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeclip_completions_recorded_total",
			Help: "Challenge completions recorded",
		},
		[]string{"category"},
	)

	CompletionsDuplicate = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codeclip_completions_duplicate_total",
			Help: "Completions ignored because the challenge was already recorded",
		},
	)

	AchievementsUnlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeclip_achievements_unlocked_total",
			Help: "Achievements unlocked",
		},
		[]string{"achievement"},
	)

	SaveFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeclip_slot_save_failures_total",
			Help: "Failed writes of a storage slot",
		},
		[]string{"key"},
	)

	GoalsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeclip_goals_completed_total",
			Help: "Goals that reached their target",
		},
		[]string{"type"},
	)

	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeclip_notifications_published_total",
			Help: "Completion events handed to a notifier",
		},
		[]string{"notifier", "result"}, // result: "ok" or "error"
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeclip_http_requests_total",
			Help: "HTTP requests served by the daemon",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codeclip_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
