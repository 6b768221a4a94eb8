// Package training runs live training matches: their lifecycle, score entry,
// rankings and the join request workflow of closed matches.
package training

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/training-match/internal/handicap"
	"github.com/mauv0809/training-match/internal/match"
	"github.com/mauv0809/training-match/internal/metrics"
	"github.com/mauv0809/training-match/internal/notifier"
)

// Service implements every match operation on top of a match.Store.
type Service struct {
	store    match.Store
	club     Club
	handicap handicap.Config
	notifier notifier.Notifier
	metrics  metrics.Metrics

	now     func() time.Time
	newCode match.CodeGenerator
	newID   func() string

	locks *keyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeGenerator replaces the random match code generator.
func WithCodeGenerator(gen match.CodeGenerator) Option {
	return func(s *Service) { s.newCode = gen }
}

// New creates a new Service. Events are published to n after each change is committed.
func New(store match.Store, c Club, cfg handicap.Config, n notifier.Notifier, m metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:    store,
		club:     c,
		handicap: cfg,
		notifier: n,
		metrics:  m,
		now:      time.Now,
		newCode:  match.RandomCode,
		newID:    uuid.NewString,
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetMatch returns the match with the given id.
func (s *Service) GetMatch(ctx context.Context, matchID int64) (*match.Match, error) {
	return s.store.GetMatch(ctx, matchID)
}

// GetMatchByCode returns the match with the given code.
func (s *Service) GetMatchByCode(ctx context.Context, code string) (*match.Match, error) {
	return s.store.GetMatchByCode(ctx, code)
}

// ListActiveMatches returns the active matches the member takes part in.
func (s *Service) ListActiveMatches(ctx context.Context, memberID string) ([]match.Match, error) {
	return s.store.ListActiveMatchesForMember(ctx, memberID)
}

// ListParticipants returns the participants of a match in display order.
func (s *Service) ListParticipants(ctx context.Context, matchID int64) ([]match.Participant, error) {
	if _, err := s.store.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	return s.store.ListParticipants(ctx, matchID)
}

// publish hands an event to the notifier. Failures are logged and counted
// but never returned; the change the event describes is already committed.
func (s *Service) publish(ctx context.Context, m *match.Match, kind notifier.Kind, target string, payload any) {
	event := notifier.Event{
		Kind:           kind,
		MatchID:        m.ID,
		MatchCode:      m.Code,
		TargetMemberID: target,
		Payload:        payload,
		At:             s.now().UTC(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		log.Error("Failed to publish event", "error", err, "kind", kind, "code", m.Code)
		s.metrics.IncNotificationsFailed(string(kind))
	}
}

func (s *Service) observe(operation string, start time.Time) {
	s.metrics.ObserveOperationDuration(operation, time.Since(start).Seconds())
}

// frozenHandicap computes the handicap a member carries into a match. The
// statistics are rebuilt from history first so the freeze uses current data.
func (s *Service) frozenHandicap(ctx context.Context, memberID string, wc match.WeaponClass) (*float64, bool, error) {
	class, ok, err := s.club.GetShooterClass(ctx, memberID, wc)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, match.ErrMissingShooterClass
	}
	if _, err := s.club.RecalculateFromHistory(ctx, memberID, wc); err != nil {
		log.Warn("Failed to refresh statistics before handicap freeze", "error", err, "memberID", memberID)
	}
	stats, err := s.club.GetStatistics(ctx, memberID, wc)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get statistics: %w", err)
	}
	res := s.handicap.Calculate(*stats, class)
	log.Debug("Froze handicap", "memberID", memberID, "weaponClass", wc, "handicap", res.HandicapPerSeries,
		"provisional", res.IsProvisional, "effectiveAverage", res.EffectiveAverage)
	return &res.HandicapPerSeries, res.IsProvisional, nil
}

// newMemberParticipant prepares the participant row of a member, freezing
// the handicap when the match uses one.
func (s *Service) newMemberParticipant(ctx context.Context, m *match.Match, memberID string) (*match.Participant, error) {
	member, err := s.club.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	p := &match.Participant{
		MatchID:     m.ID,
		Key:         match.MemberKey(memberID),
		DisplayName: member.Name,
		JoinedAt:    s.now().UTC(),
	}
	if m.HasHandicap {
		p.HandicapPerSeries, p.IsProvisional, err = s.frozenHandicap(ctx, memberID, m.WeaponClass)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

func isCreator(m *match.Match, key match.ParticipantKey) bool {
	id, ok := key.MemberID()
	return ok && id == m.CreatorID
}

func requireActive(m *match.Match) error {
	if !m.IsActive() {
		return match.ErrMatchNotActive
	}
	return nil
}

// keyedMutex serializes work per key. Entries are dropped once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func scoreLockKey(matchID int64, key match.ParticipantKey) string {
	return fmt.Sprintf("%d/%s", matchID, key)
}
