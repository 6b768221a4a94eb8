package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/training-match/internal/match"
	"github.com/mauv0809/training-match/internal/notifier"
)

// RequestJoin asks the creator for admission to a match. It returns nil and
// no error when the member already takes part. A member whose earlier
// request was accepted may ask again after leaving; a blocked member may not.
func (s *Service) RequestJoin(ctx context.Context, matchID int64, memberID string) (*match.JoinRequest, error) {
	defer s.observe("RequestJoin", time.Now())

	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(m); err != nil {
		return nil, err
	}
	if _, err := s.store.GetParticipant(ctx, matchID, match.MemberKey(memberID)); err == nil {
		return nil, nil
	} else if !errors.Is(err, match.ErrParticipantNotFound) {
		return nil, err
	}
	member, err := s.club.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var jr *match.JoinRequest
	err = s.store.WithTx(ctx, func(q match.Queries) error {
		existing, err := q.GetJoinRequestForMember(ctx, matchID, memberID)
		if err != nil {
			return err
		}
		if existing == nil {
			jr = &match.JoinRequest{ID: s.newID(), MatchID: matchID, MemberID: memberID, CreatedAt: now}
		} else {
			switch existing.Status {
			case match.JoinPending:
				return match.ErrAlreadyPending
			case match.JoinBlocked:
				return match.ErrBlocked
			}
			jr = existing
		}
		jr.Status = match.JoinPending
		jr.UpdatedAt = now
		return q.SaveJoinRequest(ctx, jr)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncJoinRequests(string(match.JoinPending))
	log.Info("Join requested", "code", m.Code, "memberID", memberID, "requestID", jr.ID)
	s.publish(ctx, m, notifier.JoinRequestCreated, m.CreatorID, notifier.JoinRequestPayload{Request: *jr, MemberName: member.Name})
	return jr, nil
}

// RespondToRequest accepts or blocks a pending request. Only the match
// creator may respond; being an administrator is not enough.
func (s *Service) RespondToRequest(ctx context.Context, requestID, actorID string, isAdmin bool, action Action) (*match.JoinRequest, error) {
	defer s.observe("RespondToRequest", time.Now())

	if action != ActionAccept && action != ActionBlock {
		return nil, fmt.Errorf("%w: unknown action %q", match.ErrValidation, action)
	}
	jr, err := s.store.GetJoinRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	m, err := s.store.GetMatch(ctx, jr.MatchID)
	if err != nil {
		return nil, err
	}
	if m.CreatorID != actorID {
		return nil, match.ErrForbidden
	}
	if err := requireActive(m); err != nil {
		return nil, err
	}
	if jr.Status != match.JoinPending {
		return nil, match.ErrRequestResolved
	}

	resolve := func(status match.JoinStatus) func(q match.Queries) error {
		return func(q match.Queries) error {
			current, err := q.GetJoinRequest(ctx, requestID)
			if err != nil {
				return err
			}
			if current.Status != match.JoinPending {
				return match.ErrRequestResolved
			}
			current.Status = status
			current.UpdatedAt = s.now().UTC()
			if err := q.SaveJoinRequest(ctx, current); err != nil {
				return err
			}
			*jr = *current
			return nil
		}
	}

	if action == ActionBlock {
		if err := s.store.WithTx(ctx, resolve(match.JoinBlocked)); err != nil {
			return nil, err
		}
		s.metrics.IncJoinRequests(string(match.JoinBlocked))
		log.Info("Join request blocked", "code", m.Code, "memberID", jr.MemberID)
		s.publish(ctx, m, notifier.JoinRequestBlocked, jr.MemberID, notifier.JoinRequestPayload{Request: *jr})
		return jr, nil
	}

	if _, err := s.addMember(ctx, m, jr.MemberID, resolve(match.JoinAccepted)); err != nil {
		return nil, err
	}
	s.metrics.IncJoinRequests(string(match.JoinAccepted))
	log.Info("Join request accepted", "code", m.Code, "memberID", jr.MemberID)
	s.publish(ctx, m, notifier.JoinRequestAccepted, jr.MemberID, notifier.JoinRequestPayload{Request: *jr})
	return jr, nil
}

// ListPending returns the pending requests of a match to its creator.
func (s *Service) ListPending(ctx context.Context, matchID int64, actorID string) ([]match.JoinRequest, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.CreatorID != actorID {
		return nil, match.ErrForbidden
	}
	return s.store.ListJoinRequests(ctx, matchID, match.JoinPending)
}
