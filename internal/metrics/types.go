package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	MatchesCreated       prometheus.Counter
	MatchesCompleted     prometheus.Counter
	MatchesDeleted       prometheus.Counter
	ParticipantsJoined   prometheus.Counter
	SeriesSubmitted      prometheus.Counter
	JoinRequests         *prometheus.CounterVec
	NotificationsSent    *prometheus.CounterVec
	NotificationsFailed  *prometheus.CounterVec
	NotificationsDropped prometheus.Counter
	StaleMatchesSwept    prometheus.Counter
	OperationDuration    *prometheus.HistogramVec
	StartupTimeSeconds   prometheus.Gauge
}
