package match

import (
	"context"
	"time"
)

// Queries are the match store operations available both on the store itself
// and inside a transaction.
type Queries interface {
	InsertMatch(ctx context.Context, m *Match) error
	GetMatch(ctx context.Context, id int64) (*Match, error)
	GetMatchByCode(ctx context.Context, code string) (*Match, error)
	// UpdateSettings changes the settings of an active match. It returns
	// ErrMatchNotActive when the match is no longer active.
	UpdateSettings(ctx context.Context, id int64, maxSeriesCount *int, allowGuests bool) error
	// CompleteMatch marks an active match completed at the given time. It
	// reports false when the match was already completed.
	CompleteMatch(ctx context.Context, id int64, at time.Time) (bool, error)
	DeleteMatch(ctx context.Context, id int64) error
	ListActiveMatchesForMember(ctx context.Context, memberID string) ([]Match, error)
	ListStaleMatches(ctx context.Context, startedBefore time.Time) ([]Match, error)

	// InsertParticipant adds p unless the same member or guest already takes
	// part in the match. It reports whether a row was inserted; p is filled
	// from the stored row either way.
	InsertParticipant(ctx context.Context, p *Participant) (bool, error)
	GetParticipant(ctx context.Context, matchID int64, key ParticipantKey) (*Participant, error)
	ListParticipants(ctx context.Context, matchID int64) ([]Participant, error)
	DeleteParticipant(ctx context.Context, matchID int64, key ParticipantKey) error
	DeleteParticipants(ctx context.Context, matchID int64) error

	// GetScoreRecord returns nil and no error when the participant has no scores yet.
	GetScoreRecord(ctx context.Context, matchID int64, key ParticipantKey) (*ScoreRecord, error)
	ListScoreRecords(ctx context.Context, matchID int64) ([]ScoreRecord, error)
	SaveScoreRecord(ctx context.Context, r *ScoreRecord) error
	DeleteScoreRecord(ctx context.Context, id int64) error
	DeleteScoresForParticipant(ctx context.Context, matchID int64, key ParticipantKey) error
	DetachScores(ctx context.Context, matchID int64) (int64, error)

	GetJoinRequest(ctx context.Context, id string) (*JoinRequest, error)
	// GetJoinRequestForMember returns nil and no error when no request exists.
	GetJoinRequestForMember(ctx context.Context, matchID int64, memberID string) (*JoinRequest, error)
	ListJoinRequests(ctx context.Context, matchID int64, status JoinStatus) ([]JoinRequest, error)
	SaveJoinRequest(ctx context.Context, jr *JoinRequest) error
	DeleteJoinRequests(ctx context.Context, matchID int64) error

	InsertGuestSession(ctx context.Context, g *GuestSession) error
	GetGuestSession(ctx context.Context, matchID int64, claimToken string) (*GuestSession, error)
	DeleteGuestSessions(ctx context.Context, matchID int64) error
}

// Store is the durable state of matches, participants, scores and join requests.
type Store interface {
	Queries
	// WithTx runs fn in a single transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(q Queries) error) error
}
