package training

import (
	"time"

	"github.com/mauv0809/training-match/internal/match"
)

// CreateMatchInput describes a new match.
type CreateMatchInput struct {
	CreatorID      string            `json:"-"`
	Name           string            `json:"name"`
	WeaponClass    match.WeaponClass `json:"weapon_class"`
	StartTime      *time.Time        `json:"start_time,omitempty"`
	IsOpen         bool              `json:"is_open"`
	HasHandicap    bool              `json:"has_handicap"`
	MaxSeriesCount *int              `json:"max_series_count,omitempty"`
	AllowGuests    bool              `json:"allow_guests"`
}

// SettingsUpdate changes the adjustable settings of a match. Nil fields are left unchanged.
type SettingsUpdate struct {
	MaxSeriesCount *int  `json:"max_series_count,omitempty"`
	AllowGuests    *bool `json:"allow_guests,omitempty"`
}

// SeriesInput is one series as entered by a shooter: either the individual
// shots or the series total with its X-count.
type SeriesInput struct {
	Shots    []string `json:"shots,omitempty"`
	Total    *int     `json:"total,omitempty"`
	XCount   *int     `json:"x_count,omitempty"`
	PhotoRef *string  `json:"photo_ref,omitempty"`
}

// SeriesResult is returned after a series was stored.
type SeriesResult struct {
	SeriesNumber int               `json:"series_number"`
	Series       match.Series      `json:"series"`
	Record       match.ScoreRecord `json:"record"`
}

// Action resolves a join request.
type Action string

const (
	ActionAccept Action = "ACCEPT"
	ActionBlock  Action = "BLOCK"
)

// RankingEntry is one line of an equalized ranking.
type RankingEntry struct {
	Key            match.ParticipantKey `json:"key"`
	DisplayName    string               `json:"display_name,omitempty"`
	SeriesCount    int                  `json:"series_count"`
	EqualizedScore int                  `json:"equalized_score"`
	Rank           int                  `json:"rank"`
}

// ScoreboardRow is one participant on the scoreboard.
type ScoreboardRow struct {
	Participant match.Participant  `json:"participant"`
	Record      *match.ScoreRecord `json:"record,omitempty"`
	SeriesCount int                `json:"series_count"`
	TotalScore  int                `json:"total_score"`
	TotalXCount int                `json:"total_x_count"`
	FinalScore  *float64           `json:"final_score,omitempty"`
}

// Scoreboard is the full live state of a match.
type Scoreboard struct {
	Match    match.Match     `json:"match"`
	Rows     []ScoreboardRow `json:"rows"`
	Ranking  []RankingEntry  `json:"ranking"`
	MinCount int             `json:"min_series_count"`
}
