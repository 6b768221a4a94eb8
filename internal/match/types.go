package match

import (
	"fmt"
	"strings"
	"time"
)

// WeaponClass is the pistol class a match is shot in.
type WeaponClass string

const (
	WeaponClassA WeaponClass = "A"
	WeaponClassB WeaponClass = "B"
	WeaponClassC WeaponClass = "C"
	WeaponClassR WeaponClass = "R"
	WeaponClassM WeaponClass = "M"
	WeaponClassL WeaponClass = "L"
)

// WeaponClasses lists every supported weapon class.
var WeaponClasses = []WeaponClass{WeaponClassA, WeaponClassB, WeaponClassC, WeaponClassR, WeaponClassM, WeaponClassL}

// Valid reports whether w is one of the known weapon classes.
func (w WeaponClass) Valid() bool {
	for _, c := range WeaponClasses {
		if c == w {
			return true
		}
	}
	return false
}

// MaxShotValue is the value of the best possible shot in this class. The "X"
// wildcard counts as this value.
func (w WeaponClass) MaxShotValue() int {
	return 10
}

// Status represents the lifecycle state of a match.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

// Match is one scored training session.
type Match struct {
	ID             int64       `json:"id"`
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	WeaponClass    WeaponClass `json:"weapon_class"`
	CreatorID      string      `json:"creator_id"`
	CreatedAt      time.Time   `json:"created_at"`
	StartTime      *time.Time  `json:"start_time,omitempty"`
	Status         Status      `json:"status"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	IsOpen         bool        `json:"is_open"`
	HasHandicap    bool        `json:"has_handicap"`
	MaxSeriesCount *int        `json:"max_series_count,omitempty"`
	AllowGuests    bool        `json:"allow_guests"`
}

// IsActive reports whether the match still accepts participants and scores.
func (m *Match) IsActive() bool {
	return m.Status == StatusActive
}

// HasStarted reports whether the scheduled start time has passed. A match
// without a start time starts immediately.
func (m *Match) HasStarted(now time.Time) bool {
	return m.StartTime == nil || !now.Before(*m.StartTime)
}

// EffectiveStart is the moment the match opened for scoring.
func (m *Match) EffectiveStart() time.Time {
	if m.StartTime != nil {
		return *m.StartTime
	}
	return m.CreatedAt
}

// CanManage reports whether actor may complete, delete or reconfigure the match.
func (m *Match) CanManage(actorID string, isAdmin bool) bool {
	return isAdmin || m.CreatorID == actorID
}

// ParticipantKind tells member and guest participants apart.
type ParticipantKind string

const (
	KindMember ParticipantKind = "member"
	KindGuest  ParticipantKind = "guest"
)

// ParticipantKey identifies a participant as either a member or a guest. The
// zero value is invalid; build keys with MemberKey or GuestKey.
type ParticipantKey struct {
	Kind ParticipantKind `json:"kind" msgpack:"kind"`
	ID   string          `json:"id" msgpack:"id"`
}

func MemberKey(memberID string) ParticipantKey {
	return ParticipantKey{Kind: KindMember, ID: memberID}
}

func GuestKey(guestID string) ParticipantKey {
	return ParticipantKey{Kind: KindGuest, ID: guestID}
}

func (k ParticipantKey) IsMember() bool { return k.Kind == KindMember }
func (k ParticipantKey) IsGuest() bool  { return k.Kind == KindGuest }

// Valid reports whether the key names exactly one member or guest.
func (k ParticipantKey) Valid() bool {
	return (k.Kind == KindMember || k.Kind == KindGuest) && k.ID != ""
}

// MemberID returns the member id and true for member keys.
func (k ParticipantKey) MemberID() (string, bool) {
	if k.Kind != KindMember {
		return "", false
	}
	return k.ID, true
}

// GuestID returns the guest id and true for guest keys.
func (k ParticipantKey) GuestID() (string, bool) {
	if k.Kind != KindGuest {
		return "", false
	}
	return k.ID, true
}

func (k ParticipantKey) String() string {
	return string(k.Kind) + ":" + k.ID
}

// ParseParticipantKey parses the "member:<id>" / "guest:<id>" form produced by String.
func ParseParticipantKey(s string) (ParticipantKey, error) {
	kind, id, ok := strings.Cut(s, ":")
	key := ParticipantKey{Kind: ParticipantKind(kind), ID: id}
	if !ok || !key.Valid() {
		return ParticipantKey{}, fmt.Errorf("%w: invalid participant key %q", ErrValidation, s)
	}
	return key, nil
}

// columns splits the key into the nullable member/guest column pair used by the store.
func (k ParticipantKey) columns() (memberID, guestID *string) {
	id := k.ID
	if k.IsMember() {
		return &id, nil
	}
	return nil, &id
}

// Participant is a member or guest taking part in a match.
type Participant struct {
	ID                int64          `json:"id"`
	MatchID           int64          `json:"match_id"`
	Key               ParticipantKey `json:"key"`
	DisplayName       string         `json:"display_name"`
	JoinedAt          time.Time      `json:"joined_at"`
	DisplayOrder      int            `json:"display_order"`
	HandicapPerSeries *float64       `json:"handicap_per_series,omitempty"`
	IsProvisional     bool           `json:"is_provisional"`
}

// GuestSession ties a guest to one match. The claim token is the guest's credential.
type GuestSession struct {
	ID          string    `json:"id"`
	MatchID     int64     `json:"match_id"`
	DisplayName string    `json:"display_name"`
	ClaimToken  string    `json:"claim_token"`
	CreatedAt   time.Time `json:"created_at"`
}

// JoinStatus is the state of a join request.
type JoinStatus string

const (
	JoinPending  JoinStatus = "PENDING"
	JoinAccepted JoinStatus = "ACCEPTED"
	JoinBlocked  JoinStatus = "BLOCKED"
)

// JoinRequest asks the creator of a closed match for admission. There is at
// most one row per (match, member); the latest status wins.
type JoinRequest struct {
	ID        string     `json:"id"`
	MatchID   int64      `json:"match_id"`
	MemberID  string     `json:"member_id"`
	Status    JoinStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
