package training

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/training-match/internal/match"
	"github.com/mauv0809/training-match/internal/notifier"
)

// scoreMutation is a read-modify-write of one participant's score record.
// rec is nil when the participant has no scores yet. Returning a nil record
// deletes the stored one.
type scoreMutation func(m *match.Match, rec *match.ScoreRecord) (*match.ScoreRecord, error)

// mutateScores runs fn under the participant's lock inside one transaction.
// gateStart applies the start time check to everyone but the creator.
func (s *Service) mutateScores(ctx context.Context, matchID int64, key match.ParticipantKey, gateStart bool, fn scoreMutation) (*match.Match, *match.ScoreRecord, error) {
	if !key.Valid() {
		return nil, nil, fmt.Errorf("%w: invalid participant", match.ErrValidation)
	}
	unlock := s.locks.Lock(scoreLockKey(matchID, key))
	defer unlock()

	var (
		m   *match.Match
		out *match.ScoreRecord
	)
	err := s.store.WithTx(ctx, func(q match.Queries) error {
		var err error
		if m, err = q.GetMatch(ctx, matchID); err != nil {
			return err
		}
		if err := requireActive(m); err != nil {
			return err
		}
		now := s.now()
		if gateStart && !isCreator(m, key) && !m.HasStarted(now) {
			return match.ErrMatchNotStarted
		}
		if _, err := q.GetParticipant(ctx, matchID, key); err != nil {
			if errors.Is(err, match.ErrParticipantNotFound) {
				return match.ErrNotParticipant
			}
			return err
		}

		rec, err := q.GetScoreRecord(ctx, matchID, key)
		if err != nil {
			return err
		}
		if out, err = fn(m, rec); err != nil {
			return err
		}
		if out == nil {
			if rec != nil {
				return q.DeleteScoreRecord(ctx, rec.ID)
			}
			return nil
		}
		out.UpdatedAt = now.UTC()
		return q.SaveScoreRecord(ctx, out)
	})
	if err != nil {
		return nil, nil, err
	}
	return m, out, nil
}

// SubmitSeries appends a series to the participant's scores.
func (s *Service) SubmitSeries(ctx context.Context, matchID int64, key match.ParticipantKey, in SeriesInput) (*SeriesResult, error) {
	defer s.observe("SubmitSeries", time.Now())

	var number int
	var series match.Series
	m, rec, err := s.mutateScores(ctx, matchID, key, true, func(m *match.Match, rec *match.ScoreRecord) (*match.ScoreRecord, error) {
		var err error
		if series, err = buildSeries(in, m.WeaponClass, s.now().UTC()); err != nil {
			return nil, err
		}
		if rec == nil {
			id := m.ID
			now := s.now().UTC()
			rec = &match.ScoreRecord{MatchID: &id, Key: key, WeaponClass: m.WeaponClass, CreatedAt: now}
		}
		if m.MaxSeriesCount != nil && rec.SeriesCount() >= *m.MaxSeriesCount {
			return nil, match.ErrSeriesLimitReached
		}
		number = rec.Append(series)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSeriesSubmitted()
	log.Info("Series submitted", "code", m.Code, "participant", key, "series", number, "total", series.Total)
	s.publish(ctx, m, notifier.ScoreUpdated, "", notifier.ScorePayload{Key: key, SeriesNumber: number, Record: rec})
	series.Number = number
	return &SeriesResult{SeriesNumber: number, Series: series, Record: *rec}, nil
}

// UpdateSeries replaces one series in place.
func (s *Service) UpdateSeries(ctx context.Context, matchID int64, key match.ParticipantKey, number int, in SeriesInput) (*SeriesResult, error) {
	defer s.observe("UpdateSeries", time.Now())

	m, rec, err := s.mutateScores(ctx, matchID, key, true, func(m *match.Match, rec *match.ScoreRecord) (*match.ScoreRecord, error) {
		if rec == nil {
			return nil, match.ErrSeriesNotFound
		}
		if _, err := rec.Get(number); err != nil {
			return nil, err
		}
		series, err := buildSeries(in, m.WeaponClass, s.now().UTC())
		if err != nil {
			return nil, err
		}
		if err := rec.Replace(number, series); err != nil {
			return nil, err
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}

	updated, _ := rec.Get(number)
	log.Info("Series updated", "code", m.Code, "participant", key, "series", number, "total", updated.Total)
	s.publish(ctx, m, notifier.ScoreUpdated, "", notifier.ScorePayload{Key: key, SeriesNumber: number, Record: rec})
	return &SeriesResult{SeriesNumber: number, Series: *updated, Record: *rec}, nil
}

// DeleteSeries removes one series and renumbers the rest. Deleting the last
// series removes the score record. Unlike submit and update, deleting is
// allowed before the start time.
func (s *Service) DeleteSeries(ctx context.Context, matchID int64, key match.ParticipantKey, number int) (*match.ScoreRecord, error) {
	defer s.observe("DeleteSeries", time.Now())

	m, rec, err := s.mutateScores(ctx, matchID, key, false, func(m *match.Match, rec *match.ScoreRecord) (*match.ScoreRecord, error) {
		if rec == nil {
			return nil, match.ErrSeriesNotFound
		}
		if err := rec.Remove(number); err != nil {
			return nil, err
		}
		if rec.SeriesCount() == 0 {
			return nil, nil
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Series deleted", "code", m.Code, "participant", key, "series", number, "recordRemoved", rec == nil)
	s.publish(ctx, m, notifier.ScoreUpdated, "", notifier.ScorePayload{Key: key, SeriesNumber: number, Record: rec})
	return rec, nil
}

// ToggleReaction adds or removes reactor's emoji on a series of the given
// participant. It reports whether the reaction is now set.
func (s *Service) ToggleReaction(ctx context.Context, matchID int64, key match.ParticipantKey, number int, reactor, emoji string) (bool, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" || reactor == "" {
		return false, fmt.Errorf("%w: reaction and reactor are required", match.ErrValidation)
	}

	var set bool
	m, rec, err := s.mutateScores(ctx, matchID, key, false, func(m *match.Match, rec *match.ScoreRecord) (*match.ScoreRecord, error) {
		if rec == nil {
			return nil, match.ErrSeriesNotFound
		}
		var err error
		if set, err = rec.ToggleReaction(number, emoji, reactor); err != nil {
			return nil, err
		}
		return rec, nil
	})
	if err != nil {
		return false, err
	}

	log.Debug("Reaction toggled", "code", m.Code, "participant", key, "series", number, "emoji", emoji, "set", set)
	s.publish(ctx, m, notifier.ScoreUpdated, "", notifier.ScorePayload{Key: key, SeriesNumber: number, Record: rec})
	return set, nil
}
