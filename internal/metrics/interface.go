package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncMatchesCreated()
	IncMatchesCompleted()
	IncMatchesDeleted()
	IncParticipantsJoined()
	IncSeriesSubmitted()
	IncJoinRequests(status string)
	IncNotificationsSent(kind string)
	IncNotificationsFailed(kind string)
	IncNotificationsDropped()
	AddStaleMatchesSwept(n int)
	ObserveOperationDuration(operation string, duration float64)
	SetStartupTime(duration float64)
}
