package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "training_matches_created_total",
			Help: "The total number of training matches created.",
		}),
		MatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "training_matches_completed_total",
			Help: "The total number of training matches completed.",
		}),
		MatchesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "training_matches_deleted_total",
			Help: "The total number of training matches deleted.",
		}),
		ParticipantsJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "training_participants_joined_total",
			Help: "The total number of participants added to matches.",
		}),
		SeriesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "training_series_submitted_total",
			Help: "The total number of series submitted.",
		}),
		JoinRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "training_join_requests_total",
			Help: "The total number of join request transitions by resulting status.",
		}, []string{"status"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "training_notifications_sent_total",
			Help: "The total number of notifications successfully delivered, by event kind.",
		}, []string{"kind"}),
		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "training_notifications_failed_total",
			Help: "The total number of notifications that failed to deliver, by event kind.",
		}, []string{"kind"}),
		NotificationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "training_notifications_dropped_total",
			Help: "The total number of notifications dropped because the queue was full.",
		}),
		StaleMatchesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "training_stale_matches_swept_total",
			Help: "The total number of stale matches completed by the sweeper.",
		}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "training_operation_duration_seconds",
			Help:    "The duration of match operations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "training_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesCreated,
		s.MatchesCompleted,
		s.MatchesDeleted,
		s.ParticipantsJoined,
		s.SeriesSubmitted,
		s.JoinRequests,
		s.NotificationsSent,
		s.NotificationsFailed,
		s.NotificationsDropped,
		s.StaleMatchesSwept,
		s.OperationDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesCreated() {
	s.MatchesCreated.Inc()
}

func (s *Service) IncMatchesCompleted() {
	s.MatchesCompleted.Inc()
}

func (s *Service) IncMatchesDeleted() {
	s.MatchesDeleted.Inc()
}

func (s *Service) IncParticipantsJoined() {
	s.ParticipantsJoined.Inc()
}

func (s *Service) IncSeriesSubmitted() {
	s.SeriesSubmitted.Inc()
}

func (s *Service) IncJoinRequests(status string) {
	s.JoinRequests.WithLabelValues(status).Inc()
}

func (s *Service) IncNotificationsSent(kind string) {
	s.NotificationsSent.WithLabelValues(kind).Inc()
}

func (s *Service) IncNotificationsFailed(kind string) {
	s.NotificationsFailed.WithLabelValues(kind).Inc()
}

func (s *Service) IncNotificationsDropped() {
	s.NotificationsDropped.Inc()
}

func (s *Service) AddStaleMatchesSwept(n int) {
	s.StaleMatchesSwept.Add(float64(n))
}

func (s *Service) ObserveOperationDuration(operation string, duration float64) {
	s.OperationDuration.WithLabelValues(operation).Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
