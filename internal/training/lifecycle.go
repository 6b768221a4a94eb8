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

// CreateMatch creates a match with a fresh code and adds the creator as its
// first participant.
func (s *Service) CreateMatch(ctx context.Context, in CreateMatchInput) (*match.Match, error) {
	defer s.observe("CreateMatch", time.Now())

	if !in.WeaponClass.Valid() {
		return nil, match.ErrInvalidWeaponClass
	}
	if in.MaxSeriesCount != nil && *in.MaxSeriesCount <= 0 {
		return nil, fmt.Errorf("%w: max series count must be positive", match.ErrValidation)
	}

	now := s.now().UTC()
	m := &match.Match{
		Name:           strings.TrimSpace(in.Name),
		WeaponClass:    in.WeaponClass,
		CreatorID:      in.CreatorID,
		CreatedAt:      now,
		StartTime:      in.StartTime,
		Status:         match.StatusActive,
		IsOpen:         in.IsOpen,
		HasHandicap:    in.HasHandicap,
		MaxSeriesCount: in.MaxSeriesCount,
		AllowGuests:    in.AllowGuests,
	}
	creator, err := s.newMemberParticipant(ctx, m, in.CreatorID)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= match.MaxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		m.Code = code
		err = s.store.WithTx(ctx, func(q match.Queries) error {
			if err := q.InsertMatch(ctx, m); err != nil {
				return err
			}
			creator.MatchID = m.ID
			_, err := q.InsertParticipant(ctx, creator)
			return err
		})
		if errors.Is(err, match.ErrCodeConflict) {
			log.Warn("Match code collision, retrying", "code", code, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.metrics.IncMatchesCreated()
		log.Info("Created match", "id", m.ID, "code", m.Code, "creator", m.CreatorID, "handicap", m.HasHandicap)
		return m, nil
	}
	return nil, match.ErrCodeGenerationExhausted
}

// JoinMatch adds a member to an open match. Joining twice returns the
// existing participant. On a closed match a join request is filed instead
// and returned in place of the participant.
func (s *Service) JoinMatch(ctx context.Context, matchID int64, memberID string) (*match.Participant, *match.JoinRequest, error) {
	defer s.observe("JoinMatch", time.Now())

	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireActive(m); err != nil {
		return nil, nil, err
	}
	existing, err := s.store.GetParticipant(ctx, matchID, match.MemberKey(memberID))
	if err == nil {
		return existing, nil, nil
	}
	if !errors.Is(err, match.ErrParticipantNotFound) {
		return nil, nil, err
	}
	if !m.IsOpen {
		jr, err := s.RequestJoin(ctx, matchID, memberID)
		if err != nil {
			return nil, nil, err
		}
		if jr == nil {
			// Accepted in the meantime.
			p, err := s.store.GetParticipant(ctx, matchID, match.MemberKey(memberID))
			return p, nil, err
		}
		return nil, jr, nil
	}
	p, err := s.addMember(ctx, m, memberID, nil)
	return p, nil, err
}

// addMember inserts the member as participant. When accept is set it runs in
// the same transaction, after the match was confirmed active again.
func (s *Service) addMember(ctx context.Context, m *match.Match, memberID string, accept func(q match.Queries) error) (*match.Participant, error) {
	p, err := s.newMemberParticipant(ctx, m, memberID)
	if err != nil {
		return nil, err
	}

	var inserted bool
	err = s.store.WithTx(ctx, func(q match.Queries) error {
		current, err := q.GetMatch(ctx, m.ID)
		if err != nil {
			return err
		}
		if err := requireActive(current); err != nil {
			return err
		}
		if accept != nil {
			if err := accept(q); err != nil {
				return err
			}
		}
		inserted, err = q.InsertParticipant(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	if inserted {
		s.metrics.IncParticipantsJoined()
		log.Info("Participant joined", "code", m.Code, "memberID", memberID, "handicap", p.HandicapPerSeries)
		s.publish(ctx, m, notifier.ParticipantJoined, "", notifier.ParticipantPayload{Participant: *p})
	}
	return p, nil
}

// JoinAsGuest creates a guest session and guest participant for a match
// that allows guests. The returned session's claim token identifies the
// guest on later calls.
func (s *Service) JoinAsGuest(ctx context.Context, code, displayName string) (*match.GuestSession, *match.Participant, error) {
	defer s.observe("JoinAsGuest", time.Now())

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, nil, fmt.Errorf("%w: display name is required", match.ErrValidation)
	}
	m, err := s.store.GetMatchByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if err := requireActive(m); err != nil {
		return nil, nil, err
	}
	if !m.AllowGuests {
		return nil, nil, match.ErrGuestsNotAllowed
	}

	now := s.now().UTC()
	guest := &match.GuestSession{
		ID:          s.newID(),
		MatchID:     m.ID,
		DisplayName: displayName,
		ClaimToken:  s.newID(),
		CreatedAt:   now,
	}
	p := &match.Participant{
		MatchID:     m.ID,
		Key:         match.GuestKey(guest.ID),
		DisplayName: displayName,
		JoinedAt:    now,
	}
	err = s.store.WithTx(ctx, func(q match.Queries) error {
		if err := q.InsertGuestSession(ctx, guest); err != nil {
			return err
		}
		_, err := q.InsertParticipant(ctx, p)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.IncParticipantsJoined()
	log.Info("Guest joined", "code", m.Code, "guestID", guest.ID)
	s.publish(ctx, m, notifier.ParticipantJoined, "", notifier.ParticipantPayload{Participant: *p})
	return guest, p, nil
}

// ValidateGuest resolves a guest claim token for a match.
func (s *Service) ValidateGuest(ctx context.Context, matchID int64, claimToken string) (*match.GuestSession, error) {
	if claimToken == "" {
		return nil, match.ErrGuestNotFound
	}
	return s.store.GetGuestSession(ctx, matchID, claimToken)
}

// LeaveMatch removes a member and all of their scores from the match. The
// creator can never leave.
func (s *Service) LeaveMatch(ctx context.Context, matchID int64, memberID string) error {
	defer s.observe("LeaveMatch", time.Now())

	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if m.CreatorID == memberID {
		return match.ErrCannotLeaveAsCreator
	}
	if err := requireActive(m); err != nil {
		return err
	}

	key := match.MemberKey(memberID)
	unlock := s.locks.Lock(scoreLockKey(matchID, key))
	defer unlock()

	var p *match.Participant
	err = s.store.WithTx(ctx, func(q match.Queries) error {
		current, err := q.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if err := requireActive(current); err != nil {
			return err
		}
		if p, err = q.GetParticipant(ctx, matchID, key); err != nil {
			return err
		}
		if err := q.DeleteScoresForParticipant(ctx, matchID, key); err != nil {
			return err
		}
		return q.DeleteParticipant(ctx, matchID, key)
	})
	if err != nil {
		return err
	}

	log.Info("Participant left", "code", m.Code, "memberID", memberID)
	s.publish(ctx, m, notifier.ParticipantLeft, "", notifier.ParticipantPayload{Participant: *p})
	return nil
}

// CompleteMatch closes the match for good. Completing a completed match is a no-op.
func (s *Service) CompleteMatch(ctx context.Context, matchID int64, actorID string, isAdmin bool) (*match.Match, error) {
	defer s.observe("CompleteMatch", time.Now())

	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.CanManage(actorID, isAdmin) {
		return nil, match.ErrForbidden
	}
	if _, err := s.complete(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// complete marks m completed, updates the statistics of every member with
// scores and announces the result. It reports whether this call completed
// the match; a concurrent completion makes it a no-op.
func (s *Service) complete(ctx context.Context, m *match.Match) (bool, error) {
	if !m.IsActive() {
		return false, nil
	}
	at := s.now().UTC()
	done, err := s.store.CompleteMatch(ctx, m.ID, at)
	if err != nil {
		return false, err
	}
	if !done {
		current, err := s.store.GetMatch(ctx, m.ID)
		if err != nil {
			return false, err
		}
		*m = *current
		return false, nil
	}
	m.Status = match.StatusCompleted
	m.CompletedAt = &at
	s.metrics.IncMatchesCompleted()
	log.Info("Completed match", "id", m.ID, "code", m.Code)

	board, err := s.scoreboard(ctx, m)
	if err != nil {
		log.Error("Failed to build final scoreboard", "error", err, "code", m.Code)
		board = &Scoreboard{Match: *m}
	}
	for _, row := range board.Rows {
		memberID, ok := row.Participant.Key.MemberID()
		if !ok || row.SeriesCount == 0 {
			continue
		}
		if err := s.club.UpdateAfterMatch(ctx, memberID, m.WeaponClass, row.SeriesCount, row.TotalScore); err != nil {
			log.Error("Failed to update statistics after match", "error", err, "memberID", memberID, "code", m.Code)
		}
	}

	s.publish(ctx, m, notifier.MatchCompleted, "", notifier.CompletedPayload{Match: *m, Standings: board.standings()})
	return true, nil
}

// CompleteStaleMatches completes every active match that started more than
// window ago. It returns how many matches it completed.
func (s *Service) CompleteStaleMatches(ctx context.Context, window time.Duration) (int, error) {
	defer s.observe("CompleteStaleMatches", time.Now())

	stale, err := s.store.ListStaleMatches(ctx, s.now().Add(-window))
	if err != nil {
		return 0, err
	}
	completed := 0
	for i := range stale {
		done, err := s.complete(ctx, &stale[i])
		if err != nil {
			log.Error("Failed to complete stale match", "error", err, "code", stale[i].Code)
			continue
		}
		if done {
			completed++
		}
	}
	if completed > 0 {
		s.metrics.AddStaleMatchesSwept(completed)
		log.Info("Completed stale matches", "count", completed)
	}
	return completed, nil
}

// ListStaleMatches returns the active matches CompleteStaleMatches would complete.
func (s *Service) ListStaleMatches(ctx context.Context, window time.Duration) ([]match.Match, error) {
	return s.store.ListStaleMatches(ctx, s.now().Add(-window))
}

// DeleteMatch removes the match. Score records are detached, not deleted,
// so personal history survives.
func (s *Service) DeleteMatch(ctx context.Context, matchID int64, actorID string, isAdmin bool) error {
	defer s.observe("DeleteMatch", time.Now())

	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if !m.CanManage(actorID, isAdmin) {
		return match.ErrForbidden
	}

	var detached int64
	err = s.store.WithTx(ctx, func(q match.Queries) error {
		var err error
		if detached, err = q.DetachScores(ctx, matchID); err != nil {
			return err
		}
		if err := q.DeleteJoinRequests(ctx, matchID); err != nil {
			return err
		}
		if err := q.DeleteParticipants(ctx, matchID); err != nil {
			return err
		}
		if err := q.DeleteGuestSessions(ctx, matchID); err != nil {
			return err
		}
		return q.DeleteMatch(ctx, matchID)
	})
	if err != nil {
		return err
	}

	s.metrics.IncMatchesDeleted()
	log.Info("Deleted match", "id", matchID, "code", m.Code, "detachedScores", detached)
	s.publish(ctx, m, notifier.MatchDeleted, "", notifier.MatchPayload{Match: *m})
	return nil
}

// UpdateSettings applies a partial settings change.
func (s *Service) UpdateSettings(ctx context.Context, matchID int64, actorID string, isAdmin bool, upd SettingsUpdate) (*match.Match, error) {
	defer s.observe("UpdateSettings", time.Now())

	if upd.MaxSeriesCount != nil && *upd.MaxSeriesCount <= 0 {
		return nil, fmt.Errorf("%w: max series count must be positive", match.ErrValidation)
	}
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.CanManage(actorID, isAdmin) {
		return nil, match.ErrForbidden
	}
	if err := requireActive(m); err != nil {
		return nil, err
	}

	if upd.MaxSeriesCount != nil {
		max := *upd.MaxSeriesCount
		m.MaxSeriesCount = &max
	}
	if upd.AllowGuests != nil {
		m.AllowGuests = *upd.AllowGuests
	}
	if err := s.store.UpdateSettings(ctx, m.ID, m.MaxSeriesCount, m.AllowGuests); err != nil {
		return nil, err
	}

	log.Info("Updated match settings", "code", m.Code, "maxSeriesCount", m.MaxSeriesCount, "allowGuests", m.AllowGuests)
	s.publish(ctx, m, notifier.SettingsUpdated, "", notifier.MatchPayload{Match: *m})
	return m, nil
}

// standings converts the ranking into the result list announced on completion.
func (b *Scoreboard) standings() []notifier.Standing {
	rows := make(map[match.ParticipantKey]ScoreboardRow, len(b.Rows))
	for _, r := range b.Rows {
		rows[r.Participant.Key] = r
	}
	standings := make([]notifier.Standing, 0, len(b.Ranking))
	for _, e := range b.Ranking {
		row := rows[e.Key]
		standings = append(standings, notifier.Standing{
			Rank:        e.Rank,
			DisplayName: e.DisplayName,
			Score:       e.EqualizedScore,
			SeriesCount: e.SeriesCount,
			FinalScore:  row.FinalScore,
		})
	}
	return standings
}
