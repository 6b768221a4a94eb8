package match

import (
	"slices"
	"time"
)

// EntryMethod records how a series was entered.
type EntryMethod string

const (
	EntryTotal EntryMethod = "TOTAL"
	EntryShots EntryMethod = "SHOTS"
)

// Series is one scored string of shots.
type Series struct {
	Number      int                 `json:"number"`
	Total       int                 `json:"total"`
	XCount      int                 `json:"x_count"`
	Shots       []string            `json:"shots,omitempty"`
	EntryMethod EntryMethod         `json:"entry_method"`
	PhotoRef    *string             `json:"photo_ref,omitempty"`
	Reactions   map[string][]string `json:"reactions,omitempty"`
	EnteredAt   time.Time           `json:"entered_at"`
}

// ScoreRecord holds every series a participant shot in a match. A record
// whose MatchID is nil has been detached from a deleted match.
type ScoreRecord struct {
	ID          int64          `json:"id"`
	MatchID     *int64         `json:"match_id,omitempty"`
	Key         ParticipantKey `json:"key"`
	WeaponClass WeaponClass    `json:"weapon_class"`
	Series      []Series       `json:"series"`
	TotalScore  int            `json:"total_score"`
	TotalXCount int            `json:"total_x_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SeriesCount returns the number of series in the record.
func (r *ScoreRecord) SeriesCount() int {
	return len(r.Series)
}

// Append adds s as the next series and returns its number.
func (r *ScoreRecord) Append(s Series) int {
	r.Series = append(r.Series, s)
	r.recalculate()
	return len(r.Series)
}

// Replace swaps series number n for s, keeping its position and reactions.
func (r *ScoreRecord) Replace(n int, s Series) error {
	idx := n - 1
	if idx < 0 || idx >= len(r.Series) {
		return ErrSeriesNotFound
	}
	if s.Reactions == nil {
		s.Reactions = r.Series[idx].Reactions
	}
	r.Series[idx] = s
	r.recalculate()
	return nil
}

// Remove deletes series number n and renumbers the remaining series so the
// numbers stay contiguous.
func (r *ScoreRecord) Remove(n int) error {
	idx := n - 1
	if idx < 0 || idx >= len(r.Series) {
		return ErrSeriesNotFound
	}
	r.Series = slices.Delete(r.Series, idx, idx+1)
	r.recalculate()
	return nil
}

// Get returns series number n.
func (r *ScoreRecord) Get(n int) (*Series, error) {
	idx := n - 1
	if idx < 0 || idx >= len(r.Series) {
		return nil, ErrSeriesNotFound
	}
	return &r.Series[idx], nil
}

// FirstTotals sums the totals of the first n series.
func (r *ScoreRecord) FirstTotals(n int) int {
	sum := 0
	for i := 0; i < n && i < len(r.Series); i++ {
		sum += r.Series[i].Total
	}
	return sum
}

// recalculate renumbers the series 1..N and recomputes the running totals.
func (r *ScoreRecord) recalculate() {
	r.TotalScore = 0
	r.TotalXCount = 0
	for i := range r.Series {
		r.Series[i].Number = i + 1
		r.TotalScore += r.Series[i].Total
		r.TotalXCount += r.Series[i].XCount
	}
}

// ToggleReaction adds reactor's emoji to series n, or removes it if already present.
// It reports whether the reaction is now set.
func (r *ScoreRecord) ToggleReaction(n int, emoji, reactor string) (bool, error) {
	s, err := r.Get(n)
	if err != nil {
		return false, err
	}
	if s.Reactions == nil {
		s.Reactions = make(map[string][]string)
	}
	reactors := s.Reactions[emoji]
	if i := slices.Index(reactors, reactor); i >= 0 {
		reactors = slices.Delete(reactors, i, i+1)
		if len(reactors) == 0 {
			delete(s.Reactions, emoji)
		} else {
			s.Reactions[emoji] = reactors
		}
		return false, nil
	}
	s.Reactions[emoji] = append(reactors, reactor)
	return true, nil
}
