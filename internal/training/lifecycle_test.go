package training

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/training-match/internal/club"
	"github.com/mauv0809/training-match/internal/match"
	"github.com/mauv0809/training-match/internal/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	m := f.createMatch(t)
	assert.Len(t, m.Code, match.CodeLength)
	assert.Equal(t, match.StatusActive, m.Status)
	assert.Nil(t, m.CompletedAt)
	assert.Equal(t, 1, f.metrics.MatchesCreated())

	participants, err := f.svc.ListParticipants(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, match.MemberKey("m1"), participants[0].Key)
	assert.Equal(t, "Anna", participants[0].DisplayName)
	assert.Equal(t, 0, participants[0].DisplayOrder)
	assert.Nil(t, participants[0].HandicapPerSeries)

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.CreateMatch(ctx, CreateMatchInput{CreatorID: "m1", WeaponClass: "Z"})
		assert.ErrorIs(t, err, match.ErrInvalidWeaponClass)

		_, err = f.svc.CreateMatch(ctx, CreateMatchInput{CreatorID: "m1", WeaponClass: match.WeaponClassA, MaxSeriesCount: intPtr(0)})
		assert.Equal(t, match.KindValidationFailed, match.KindOf(err))

		_, err = f.svc.CreateMatch(ctx, CreateMatchInput{CreatorID: "ghost", WeaponClass: match.WeaponClassA})
		assert.ErrorIs(t, err, match.ErrMemberNotFound)
	})
}

func TestCreateMatch_Handicap(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	in := CreateMatchInput{CreatorID: "m1", WeaponClass: match.WeaponClassC, IsOpen: true, HasHandicap: true}

	_, err := f.svc.CreateMatch(ctx, in)
	require.ErrorIs(t, err, match.ErrMissingShooterClass)

	require.NoError(t, f.club.SetShooterClass(ctx, "m1", match.WeaponClassC, club.ShooterClass1))
	m, err := f.svc.CreateMatch(ctx, in)
	require.NoError(t, err)

	p, err := f.store.GetParticipant(ctx, m.ID, match.MemberKey("m1"))
	require.NoError(t, err)
	require.NotNil(t, p.HandicapPerSeries)
	assert.Equal(t, 10.0, *p.HandicapPerSeries)
	assert.True(t, p.IsProvisional)
	assert.Contains(t, f.club.RecalculateFromHistoryCalls, "m1", "statistics are refreshed before freezing")
}

func TestCreateMatch_CodeCollision(t *testing.T) {
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	next := 0
	gen := func() (string, error) {
		c := codes[next%len(codes)]
		next++
		return c, nil
	}
	f := setup(t, WithCodeGenerator(gen))

	first := f.createMatch(t)
	second := f.createMatch(t)
	assert.Equal(t, "AAAAAA", first.Code)
	assert.Equal(t, "BBBBBB", second.Code)

	t.Run("exhausted", func(t *testing.T) {
		f := setup(t, WithCodeGenerator(func() (string, error) { return "CCCCCC", nil }))
		f.createMatch(t)
		_, err := f.svc.CreateMatch(context.Background(), CreateMatchInput{CreatorID: "m2", WeaponClass: match.WeaponClassC})
		assert.ErrorIs(t, err, match.ErrCodeGenerationExhausted)
	})
}

func TestJoinMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t)

	p, _, err := f.svc.JoinMatch(ctx, m.ID, "m2")
	require.NoError(t, err)
	assert.Equal(t, "Bo", p.DisplayName)
	assert.Equal(t, 1, p.DisplayOrder)

	again, _, err := f.svc.JoinMatch(ctx, m.ID, "m2")
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)

	participants, err := f.svc.ListParticipants(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 2, "joining twice yields one row")
	assert.Len(t, f.notes.EventsOfKind(notifier.ParticipantJoined), 1)

	requests, err := f.store.ListJoinRequests(ctx, m.ID, match.JoinPending)
	require.NoError(t, err)
	assert.Empty(t, requests, "open matches are joined without a request")

	t.Run("closed match files a join request", func(t *testing.T) {
		closed := f.createMatch(t, closedMatch)
		p, jr, err := f.svc.JoinMatch(ctx, closed.ID, "m2")
		require.NoError(t, err)
		assert.Nil(t, p)
		require.NotNil(t, jr)
		assert.Equal(t, match.JoinPending, jr.Status)

		created := f.notes.EventsOfKind(notifier.JoinRequestCreated)
		require.Len(t, created, 1)
		assert.Equal(t, "m1", created[0].TargetMemberID)

		_, _, err = f.svc.JoinMatch(ctx, closed.ID, "m2")
		assert.ErrorIs(t, err, match.ErrAlreadyPending)

		_, err = f.svc.RespondToRequest(ctx, jr.ID, "m1", false, ActionAccept)
		require.NoError(t, err)
		p, jr, err = f.svc.JoinMatch(ctx, closed.ID, "m2")
		require.NoError(t, err)
		assert.Nil(t, jr)
		require.NotNil(t, p, "accepted members join directly")
	})

	t.Run("unknown match", func(t *testing.T) {
		_, _, err := f.svc.JoinMatch(ctx, 999, "m2")
		assert.ErrorIs(t, err, match.ErrMatchNotFound)
	})

	t.Run("completed match", func(t *testing.T) {
		_, err := f.svc.CompleteMatch(ctx, m.ID, "m1", false)
		require.NoError(t, err)
		_, _, err = f.svc.JoinMatch(ctx, m.ID, "m3")
		assert.ErrorIs(t, err, match.ErrMatchNotActive)
	})
}

func TestJoinMatch_HandicapIsFrozen(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.club.SetShooterClass(ctx, "m1", match.WeaponClassC, club.ShooterClass3))
	require.NoError(t, f.club.SetShooterClass(ctx, "m2", match.WeaponClassC, club.ShooterClass2))
	m := f.createMatch(t, func(in *CreateMatchInput) { in.HasHandicap = true })

	_, _, err := f.svc.JoinMatch(ctx, m.ID, "m3")
	assert.ErrorIs(t, err, match.ErrMissingShooterClass)

	p, _, err := f.svc.JoinMatch(ctx, m.ID, "m2")
	require.NoError(t, err)
	require.NotNil(t, p.HandicapPerSeries)
	assert.Equal(t, 6.0, *p.HandicapPerSeries)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.club.UpdateAfterMatch(ctx, "m2", match.WeaponClassC, 10, 300))
	}

	stored, err := f.store.GetParticipant(ctx, m.ID, match.MemberKey("m2"))
	require.NoError(t, err)
	assert.Equal(t, 6.0, *stored.HandicapPerSeries)
	assert.True(t, stored.IsProvisional)
}

func TestLeaveMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t)
	_, _, err := f.svc.JoinMatch(ctx, m.ID, "m2")
	require.NoError(t, err)
	_, err = f.svc.SubmitSeries(ctx, m.ID, match.MemberKey("m2"), totalInput(45))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.LeaveMatch(ctx, m.ID, "m1"), match.ErrCannotLeaveAsCreator)

	require.NoError(t, f.svc.LeaveMatch(ctx, m.ID, "m2"))
	_, err = f.store.GetParticipant(ctx, m.ID, match.MemberKey("m2"))
	assert.ErrorIs(t, err, match.ErrParticipantNotFound)
	rec, err := f.store.GetScoreRecord(ctx, m.ID, match.MemberKey("m2"))
	require.NoError(t, err)
	assert.Nil(t, rec, "leaving removes the participant's scores")
	assert.Len(t, f.notes.EventsOfKind(notifier.ParticipantLeft), 1)

	assert.ErrorIs(t, f.svc.LeaveMatch(ctx, m.ID, "m2"), match.ErrParticipantNotFound)
}

func TestLeaveMatch_CompletedInBetween(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t)
	_, _, err := f.svc.JoinMatch(ctx, m.ID, "m2")
	require.NoError(t, err)
	_, err = f.svc.SubmitSeries(ctx, m.ID, match.MemberKey("m2"), totalInput(45))
	require.NoError(t, err)

	store := &interleavingStore{Store: f.store}
	store.beforeTx = func() {
		_, err := f.svc.CompleteMatch(ctx, m.ID, "m1", false)
		require.NoError(t, err)
	}
	err = f.withStore(store).LeaveMatch(ctx, m.ID, "m2")
	assert.ErrorIs(t, err, match.ErrMatchNotActive)

	_, err = f.store.GetParticipant(ctx, m.ID, match.MemberKey("m2"))
	assert.NoError(t, err, "the participant stays in the completed match")
	rec, err := f.store.GetScoreRecord(ctx, m.ID, match.MemberKey("m2"))
	require.NoError(t, err)
	require.NotNil(t, rec, "counted scores are kept")
	assert.Equal(t, 45, rec.TotalScore)
	assert.Empty(t, f.notes.EventsOfKind(notifier.ParticipantLeft))
}

func TestCompleteMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t, func(in *CreateMatchInput) { in.AllowGuests = true })
	_, _, err := f.svc.JoinMatch(ctx, m.ID, "m2")
	require.NoError(t, err)
	_, _, err = f.svc.JoinMatch(ctx, m.ID, "m3")
	require.NoError(t, err)
	_, guest, err := f.svc.JoinAsGuest(ctx, m.Code, "Visitor")
	require.NoError(t, err)

	for _, total := range []int{45, 47} {
		_, err = f.svc.SubmitSeries(ctx, m.ID, match.MemberKey("m1"), totalInput(total))
		require.NoError(t, err)
	}
	_, err = f.svc.SubmitSeries(ctx, m.ID, match.MemberKey("m2"), totalInput(49))
	require.NoError(t, err)
	_, err = f.svc.SubmitSeries(ctx, m.ID, guest.Key, totalInput(50))
	require.NoError(t, err)

	_, err = f.svc.CompleteMatch(ctx, m.ID, "m2", false)
	assert.ErrorIs(t, err, match.ErrForbidden)

	done, err := f.svc.CompleteMatch(ctx, m.ID, "admin", true)
	require.NoError(t, err)
	assert.Equal(t, match.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, f.clock(), *done.CompletedAt)

	// Only members with scores get statistics; m3 shot nothing and guests have none.
	assert.ElementsMatch(t, []string{"m1", "m2"}, f.club.UpdatedMembers())
	stats, err := f.club.GetStatistics(ctx, "m1", match.WeaponClassC)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedMatches)
	assert.Equal(t, 92, stats.TotalScore)

	events := f.notes.EventsOfKind(notifier.MatchCompleted)
	require.Len(t, events, 1)
	payload := events[0].Payload.(notifier.CompletedPayload)
	require.Len(t, payload.Standings, 3)
	assert.Equal(t, "Visitor", payload.Standings[0].DisplayName)
	assert.Equal(t, 50, payload.Standings[0].Score)

	t.Run("completing again is a no-op", func(t *testing.T) {
		again, err := f.svc.CompleteMatch(ctx, m.ID, "m1", false)
		require.NoError(t, err)
		assert.Equal(t, match.StatusCompleted, again.Status)
		assert.Len(t, f.notes.EventsOfKind(notifier.MatchCompleted), 1)
		assert.Len(t, f.club.UpdateAfterMatchCalls, 2)
	})

	t.Run("no mutations after completion", func(t *testing.T) {
		_, err := f.svc.SubmitSeries(ctx, m.ID, match.MemberKey("m1"), totalInput(40))
		assert.ErrorIs(t, err, match.ErrMatchNotActive)
		_, err = f.svc.DeleteSeries(ctx, m.ID, match.MemberKey("m1"), 1)
		assert.ErrorIs(t, err, match.ErrMatchNotActive)
		_, err = f.svc.UpdateSettings(ctx, m.ID, "m1", false, SettingsUpdate{AllowGuests: new(bool)})
		assert.ErrorIs(t, err, match.ErrMatchNotActive)
		assert.ErrorIs(t, f.svc.LeaveMatch(ctx, m.ID, "m2"), match.ErrMatchNotActive)
	})
}

func TestCompleteMatch_StatisticsFailureIsSkipped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t)
	_, _, err := f.svc.JoinMatch(ctx, m.ID, "m2")
	require.NoError(t, err)
	for _, key := range []match.ParticipantKey{match.MemberKey("m1"), match.MemberKey("m2")} {
		_, err = f.svc.SubmitSeries(ctx, m.ID, key, totalInput(44))
		require.NoError(t, err)
	}
	f.club.UpdateAfterMatchFunc = func(ctx context.Context, memberID string, wc match.WeaponClass, seriesCount, totalScore int) error {
		if memberID == "m1" {
			return assert.AnError
		}
		return nil
	}

	done, err := f.svc.CompleteMatch(ctx, m.ID, "m1", false)
	require.NoError(t, err)
	assert.Equal(t, match.StatusCompleted, done.Status)
	assert.Len(t, f.club.UpdateAfterMatchCalls, 2, "a failing member does not stop the others")
}

func TestCompleteStaleMatches(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	stale := f.createMatch(t)
	f.advance(30 * time.Hour)
	fresh := f.createMatch(t)

	n, err := f.svc.CompleteStaleMatches(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.GetMatch(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusCompleted, got.Status)
	got, err = f.svc.GetMatch(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusActive, got.Status)

	n, err = f.svc.CompleteStaleMatches(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, f.metrics.StaleMatchesSwept())
}

func TestDeleteMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t, func(in *CreateMatchInput) { in.IsOpen = false; in.AllowGuests = true })
	_, err := f.svc.SubmitSeries(ctx, m.ID, match.MemberKey("m1"), totalInput(48))
	require.NoError(t, err)
	_, err = f.svc.RequestJoin(ctx, m.ID, "m2")
	require.NoError(t, err)
	_, _, err = f.svc.JoinAsGuest(ctx, m.Code, "Visitor")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteMatch(ctx, m.ID, "m2", false), match.ErrForbidden)
	require.NoError(t, f.svc.DeleteMatch(ctx, m.ID, "m1", false))

	_, err = f.svc.GetMatch(ctx, m.ID)
	assert.ErrorIs(t, err, match.ErrMatchNotFound)

	var detached int
	require.NoError(t, f.db.Get(&detached, "SELECT COUNT(*) FROM score_records WHERE match_id IS NULL AND member_id = 'm1'"))
	assert.Equal(t, 1, detached, "scores survive the match")

	var leftovers int
	require.NoError(t, f.db.Get(&leftovers, `SELECT
		(SELECT COUNT(*) FROM participants) + (SELECT COUNT(*) FROM join_requests) + (SELECT COUNT(*) FROM guest_sessions)`))
	assert.Zero(t, leftovers)
	assert.Len(t, f.notes.EventsOfKind(notifier.MatchDeleted), 1)
}

func TestUpdateSettings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t, func(in *CreateMatchInput) { in.MaxSeriesCount = intPtr(6) })

	allow := true
	got, err := f.svc.UpdateSettings(ctx, m.ID, "m1", false, SettingsUpdate{AllowGuests: &allow})
	require.NoError(t, err)
	assert.True(t, got.AllowGuests)
	require.NotNil(t, got.MaxSeriesCount)
	assert.Equal(t, 6, *got.MaxSeriesCount, "fields left out are unchanged")

	got, err = f.svc.UpdateSettings(ctx, m.ID, "admin", true, SettingsUpdate{MaxSeriesCount: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, *got.MaxSeriesCount)
	assert.True(t, got.AllowGuests)

	_, err = f.svc.UpdateSettings(ctx, m.ID, "m2", false, SettingsUpdate{AllowGuests: &allow})
	assert.ErrorIs(t, err, match.ErrForbidden)
	_, err = f.svc.UpdateSettings(ctx, m.ID, "m1", false, SettingsUpdate{MaxSeriesCount: intPtr(-1)})
	assert.Equal(t, match.KindValidationFailed, match.KindOf(err))
	assert.Len(t, f.notes.EventsOfKind(notifier.SettingsUpdated), 2)
}

func TestUpdateSettings_CompletedInBetween(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t, func(in *CreateMatchInput) { in.MaxSeriesCount = intPtr(6) })

	store := &interleavingStore{Store: f.store}
	store.beforeUpdateSettings = func() {
		_, err := f.svc.CompleteMatch(ctx, m.ID, "m1", false)
		require.NoError(t, err)
	}
	allow := true
	_, err := f.withStore(store).UpdateSettings(ctx, m.ID, "m1", false, SettingsUpdate{AllowGuests: &allow, MaxSeriesCount: intPtr(3)})
	assert.ErrorIs(t, err, match.ErrMatchNotActive)

	got, err := f.store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusCompleted, got.Status, "completion is never undone")
	assert.NotNil(t, got.CompletedAt)
	assert.False(t, got.AllowGuests)
	assert.Equal(t, 6, *got.MaxSeriesCount)
	assert.Empty(t, f.notes.EventsOfKind(notifier.SettingsUpdated))
}

func TestJoinAsGuest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t)

	_, _, err := f.svc.JoinAsGuest(ctx, m.Code, "Visitor")
	assert.ErrorIs(t, err, match.ErrGuestsNotAllowed)

	allow := true
	_, err = f.svc.UpdateSettings(ctx, m.ID, "m1", false, SettingsUpdate{AllowGuests: &allow})
	require.NoError(t, err)

	_, _, err = f.svc.JoinAsGuest(ctx, m.Code, "   ")
	assert.Equal(t, match.KindValidationFailed, match.KindOf(err))

	session, p, err := f.svc.JoinAsGuest(ctx, m.Code, "Visitor")
	require.NoError(t, err)
	assert.True(t, p.Key.IsGuest())
	assert.Nil(t, p.HandicapPerSeries)
	assert.NotEmpty(t, session.ClaimToken)

	validated, err := f.svc.ValidateGuest(ctx, m.ID, session.ClaimToken)
	require.NoError(t, err)
	assert.Equal(t, session.ID, validated.ID)
	_, err = f.svc.ValidateGuest(ctx, m.ID, "forged")
	assert.ErrorIs(t, err, match.ErrGuestNotFound)
}
