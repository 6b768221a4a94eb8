package training

import (
	"context"
	"sort"

	"github.com/mauv0809/training-match/internal/handicap"
	"github.com/mauv0809/training-match/internal/match"
)

// EqualizedRanking ranks the records by the sum of their first n series,
// where n is the smallest series count among records that have any series.
// Records without series are left out. Ties keep their input order. It
// returns the ranking and n.
func EqualizedRanking(records []match.ScoreRecord) ([]RankingEntry, int) {
	minCount := 0
	for _, r := range records {
		if c := r.SeriesCount(); c > 0 && (minCount == 0 || c < minCount) {
			minCount = c
		}
	}

	entries := make([]RankingEntry, 0, len(records))
	for _, r := range records {
		if r.SeriesCount() == 0 {
			continue
		}
		entries = append(entries, RankingEntry{
			Key:            r.Key,
			SeriesCount:    r.SeriesCount(),
			EqualizedScore: r.FirstTotals(minCount),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EqualizedScore > entries[j].EqualizedScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, minCount
}

// ComputeEqualizedRanking ranks the participants of a match on their first
// common series.
func (s *Service) ComputeEqualizedRanking(ctx context.Context, matchID int64) ([]RankingEntry, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	board, err := s.scoreboard(ctx, m)
	if err != nil {
		return nil, err
	}
	return board.Ranking, nil
}

// GetScoreboard returns the participants, their scores, the handicap
// adjusted totals and the equalized ranking of a match.
func (s *Service) GetScoreboard(ctx context.Context, matchID int64) (*Scoreboard, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return s.scoreboard(ctx, m)
}

func (s *Service) scoreboard(ctx context.Context, m *match.Match) (*Scoreboard, error) {
	participants, err := s.store.ListParticipants(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListScoreRecords(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[match.ParticipantKey]*match.ScoreRecord, len(records))
	for i := range records {
		byKey[records[i].Key] = &records[i]
	}

	board := &Scoreboard{Match: *m, Rows: make([]ScoreboardRow, 0, len(participants))}
	names := make(map[match.ParticipantKey]string, len(participants))
	// Ranking input follows display order so ties keep the join order.
	ordered := make([]match.ScoreRecord, 0, len(records))
	for _, p := range participants {
		names[p.Key] = p.DisplayName
		row := ScoreboardRow{Participant: p}
		if rec, ok := byKey[p.Key]; ok {
			row.Record = rec
			row.SeriesCount = rec.SeriesCount()
			row.TotalScore = rec.TotalScore
			row.TotalXCount = rec.TotalXCount
			ordered = append(ordered, *rec)
		}
		if m.HasHandicap && p.HandicapPerSeries != nil {
			final := handicap.FinalScore(row.TotalScore, *p.HandicapPerSeries, row.SeriesCount)
			row.FinalScore = &final
		}
		board.Rows = append(board.Rows, row)
	}

	board.Ranking, board.MinCount = EqualizedRanking(ordered)
	for i := range board.Ranking {
		board.Ranking[i].DisplayName = names[board.Ranking[i].Key]
	}
	return board, nil
}
