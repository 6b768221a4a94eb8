package club

import (
	"time"

	"github.com/mauv0809/training-match/internal/match"
)

// Member is a club member as known to the training service.
type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// ShooterClass is the skill tier a member has declared for a weapon class (1 is the entry tier).
type ShooterClass int

const (
	ShooterClass1 ShooterClass = 1
	ShooterClass2 ShooterClass = 2
	ShooterClass3 ShooterClass = 3
)

func (c ShooterClass) Valid() bool {
	return c >= ShooterClass1 && c <= ShooterClass3
}

// Statistics summarizes a member's completed training results in one weapon class.
type Statistics struct {
	MemberID         string            `json:"member_id"`
	WeaponClass      match.WeaponClass `json:"weapon_class"`
	CompletedMatches int               `json:"completed_matches"`
	TotalSeries      int               `json:"total_series"`
	TotalScore       int               `json:"total_score"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// AverageSeries is the mean series score, or zero without history.
func (s *Statistics) AverageSeries() float64 {
	if s.TotalSeries == 0 {
		return 0
	}
	return float64(s.TotalScore) / float64(s.TotalSeries)
}
