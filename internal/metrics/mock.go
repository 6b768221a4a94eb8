package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	matchesCreated       int
	matchesCompleted     int
	matchesDeleted       int
	participantsJoined   int
	seriesSubmitted      int
	joinRequests         map[string]int
	notificationsSent    map[string]int
	notificationsFailed  map[string]int
	notificationsDropped int
	staleMatchesSwept    int
	operationDurations   map[string][]float64
	startupTime          float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		joinRequests:        make(map[string]int),
		notificationsSent:   make(map[string]int),
		notificationsFailed: make(map[string]int),
		operationDurations:  make(map[string][]float64),
	}
}

func (m *Mock) IncMatchesCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCreated++
}

func (m *Mock) IncMatchesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCompleted++
}

func (m *Mock) IncMatchesDeleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesDeleted++
}

func (m *Mock) IncParticipantsJoined() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participantsJoined++
}

func (m *Mock) IncSeriesSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seriesSubmitted++
}

func (m *Mock) IncJoinRequests(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joinRequests[status]++
}

func (m *Mock) IncNotificationsSent(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsSent[kind]++
}

func (m *Mock) IncNotificationsFailed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsFailed[kind]++
}

func (m *Mock) IncNotificationsDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsDropped++
}

func (m *Mock) AddStaleMatchesSwept(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staleMatchesSwept += n
}

func (m *Mock) ObserveOperationDuration(operation string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operationDurations[operation] = append(m.operationDurations[operation], duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesCreated returns the number of times IncMatchesCreated was called.
func (m *Mock) MatchesCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCreated
}

// MatchesCompleted returns the number of times IncMatchesCompleted was called.
func (m *Mock) MatchesCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCompleted
}

// MatchesDeleted returns the number of times IncMatchesDeleted was called.
func (m *Mock) MatchesDeleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesDeleted
}

// ParticipantsJoined returns the number of times IncParticipantsJoined was called.
func (m *Mock) ParticipantsJoined() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.participantsJoined
}

// SeriesSubmitted returns the number of times IncSeriesSubmitted was called.
func (m *Mock) SeriesSubmitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seriesSubmitted
}

// JoinRequests returns how often IncJoinRequests was called with status.
func (m *Mock) JoinRequests(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.joinRequests[status]
}

// NotificationsSent returns how often IncNotificationsSent was called with kind.
func (m *Mock) NotificationsSent(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsSent[kind]
}

// NotificationsFailed returns how often IncNotificationsFailed was called with kind.
func (m *Mock) NotificationsFailed(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsFailed[kind]
}

// NotificationsDropped returns the number of times IncNotificationsDropped was called.
func (m *Mock) NotificationsDropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsDropped
}

// StaleMatchesSwept returns the sum passed to AddStaleMatchesSwept.
func (m *Mock) StaleMatchesSwept() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.staleMatchesSwept
}

// OperationDurations returns the durations observed for operation.
func (m *Mock) OperationDurations(operation string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.operationDurations[operation]...)
}

// StartupTime returns the last value passed to SetStartupTime.
func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}
