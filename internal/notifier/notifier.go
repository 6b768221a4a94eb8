package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/mauv0809/training-match/internal/match"
)

// Notifier delivers match events to viewers. Delivery is best effort: the
// caller treats a returned error as a logged failure, never as a reason to
// undo the state change the event describes.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Kind names an event.
type Kind string

const (
	ParticipantJoined   Kind = "ParticipantJoined"
	ParticipantLeft     Kind = "ParticipantLeft"
	MatchCompleted      Kind = "MatchCompleted"
	MatchDeleted        Kind = "MatchDeleted"
	ScoreUpdated        Kind = "ScoreUpdated"
	SettingsUpdated     Kind = "SettingsUpdated"
	JoinRequestCreated  Kind = "JoinRequestCreated"
	JoinRequestAccepted Kind = "JoinRequestAccepted"
	JoinRequestBlocked  Kind = "JoinRequestBlocked"
)

// Event is a state change of one match. Events with a TargetMemberID are
// meant for that member only; all others are broadcast to the match viewers.
type Event struct {
	Kind           Kind      `json:"kind" msgpack:"kind"`
	MatchID        int64     `json:"match_id" msgpack:"match_id"`
	MatchCode      string    `json:"match_code" msgpack:"match_code"`
	TargetMemberID string    `json:"target_member_id,omitempty" msgpack:"target_member_id,omitempty"`
	Payload        any       `json:"payload,omitempty" msgpack:"payload,omitempty"`
	At             time.Time `json:"at" msgpack:"at"`
}

// Targeted reports whether the event is addressed to a single member.
func (e Event) Targeted() bool {
	return e.TargetMemberID != ""
}

// ParticipantPayload accompanies ParticipantJoined and ParticipantLeft.
type ParticipantPayload struct {
	Participant match.Participant `json:"participant" msgpack:"participant"`
}

// ScorePayload accompanies ScoreUpdated. Record is nil when the participant's
// last series was deleted.
type ScorePayload struct {
	Key          match.ParticipantKey `json:"key" msgpack:"key"`
	SeriesNumber int                  `json:"series_number" msgpack:"series_number"`
	Record       *match.ScoreRecord   `json:"record,omitempty" msgpack:"record,omitempty"`
}

// MatchPayload accompanies SettingsUpdated and MatchDeleted.
type MatchPayload struct {
	Match match.Match `json:"match" msgpack:"match"`
}

// Standing is one line of a final result list.
type Standing struct {
	Rank        int      `json:"rank" msgpack:"rank"`
	DisplayName string   `json:"display_name" msgpack:"display_name"`
	Score       int      `json:"score" msgpack:"score"`
	SeriesCount int      `json:"series_count" msgpack:"series_count"`
	FinalScore  *float64 `json:"final_score,omitempty" msgpack:"final_score,omitempty"`
}

// CompletedPayload accompanies MatchCompleted.
type CompletedPayload struct {
	Match     match.Match `json:"match" msgpack:"match"`
	Standings []Standing  `json:"standings" msgpack:"standings"`
}

// JoinRequestPayload accompanies the join request events.
type JoinRequestPayload struct {
	Request    match.JoinRequest `json:"request" msgpack:"request"`
	MemberName string            `json:"member_name,omitempty" msgpack:"member_name,omitempty"`
}

// Fanout delivers every event to each of its notifiers. One failing
// notifier does not stop delivery to the others.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
