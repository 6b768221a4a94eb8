package training

import (
	"context"
	"sync"
	"testing"

	"github.com/mauv0809/training-match/internal/match"
	"github.com/mauv0809/training-match/internal/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedMatch(in *CreateMatchInput) { in.IsOpen = false }

func TestRequestJoin_Accept(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t, closedMatch)

	jr, err := f.svc.RequestJoin(ctx, m.ID, "m2")
	require.NoError(t, err)
	require.NotNil(t, jr)
	assert.Equal(t, match.JoinPending, jr.Status)

	created := f.notes.EventsOfKind(notifier.JoinRequestCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "m1", created[0].TargetMemberID)
	assert.Equal(t, "Bo", created[0].Payload.(notifier.JoinRequestPayload).MemberName)

	_, err = f.svc.RequestJoin(ctx, m.ID, "m2")
	assert.ErrorIs(t, err, match.ErrAlreadyPending)

	pending, err := f.svc.ListPending(ctx, m.ID, "m1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	_, err = f.svc.ListPending(ctx, m.ID, "m2")
	assert.ErrorIs(t, err, match.ErrForbidden)

	_, err = f.svc.RespondToRequest(ctx, jr.ID, "admin", true, ActionAccept)
	assert.ErrorIs(t, err, match.ErrForbidden, "administrators cannot answer for the creator")

	accepted, err := f.svc.RespondToRequest(ctx, jr.ID, "m1", false, ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, match.JoinAccepted, accepted.Status)

	p, err := f.store.GetParticipant(ctx, m.ID, match.MemberKey("m2"))
	require.NoError(t, err)
	assert.Equal(t, "Bo", p.DisplayName)

	events := f.notes.EventsOfKind(notifier.JoinRequestAccepted)
	require.Len(t, events, 1)
	assert.Equal(t, "m2", events[0].TargetMemberID)
	assert.Equal(t, 1, f.metrics.JoinRequests(string(match.JoinAccepted)))

	_, err = f.svc.RespondToRequest(ctx, jr.ID, "m1", false, ActionBlock)
	assert.ErrorIs(t, err, match.ErrRequestResolved)

	again, err := f.svc.RequestJoin(ctx, m.ID, "m2")
	require.NoError(t, err)
	assert.Nil(t, again, "participants have nothing to request")
}

func TestRequestJoin_Block(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t, closedMatch)

	jr, err := f.svc.RequestJoin(ctx, m.ID, "m3")
	require.NoError(t, err)

	blocked, err := f.svc.RespondToRequest(ctx, jr.ID, "m1", false, ActionBlock)
	require.NoError(t, err)
	assert.Equal(t, match.JoinBlocked, blocked.Status)

	_, err = f.store.GetParticipant(ctx, m.ID, match.MemberKey("m3"))
	assert.ErrorIs(t, err, match.ErrParticipantNotFound)

	_, err = f.svc.RequestJoin(ctx, m.ID, "m3")
	assert.ErrorIs(t, err, match.ErrBlocked)

	events := f.notes.EventsOfKind(notifier.JoinRequestBlocked)
	require.Len(t, events, 1)
	assert.Equal(t, "m3", events[0].TargetMemberID)
}

func TestRequestJoin_AfterLeaving(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t, closedMatch)

	jr, err := f.svc.RequestJoin(ctx, m.ID, "m2")
	require.NoError(t, err)
	_, err = f.svc.RespondToRequest(ctx, jr.ID, "m1", false, ActionAccept)
	require.NoError(t, err)
	require.NoError(t, f.svc.LeaveMatch(ctx, m.ID, "m2"))

	again, err := f.svc.RequestJoin(ctx, m.ID, "m2")
	require.NoError(t, err)
	assert.Equal(t, jr.ID, again.ID, "the request row is reused")
	assert.Equal(t, match.JoinPending, again.Status)
}

func TestRespondToRequest_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t, closedMatch)
	jr, err := f.svc.RequestJoin(ctx, m.ID, "m2")
	require.NoError(t, err)

	_, err = f.svc.RespondToRequest(ctx, jr.ID, "m1", false, Action("MAYBE"))
	assert.Equal(t, match.KindValidationFailed, match.KindOf(err))

	_, err = f.svc.RespondToRequest(ctx, "missing", "m1", false, ActionAccept)
	assert.ErrorIs(t, err, match.ErrRequestNotFound)

	_, err = f.svc.CompleteMatch(ctx, m.ID, "m1", false)
	require.NoError(t, err)
	_, err = f.svc.RespondToRequest(ctx, jr.ID, "m1", false, ActionAccept)
	assert.ErrorIs(t, err, match.ErrMatchNotActive)
	_, err = f.svc.RequestJoin(ctx, m.ID, "m3")
	assert.ErrorIs(t, err, match.ErrMatchNotActive)
}

func TestJoinAndAccept_Concurrent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.createMatch(t)
	jr, err := f.svc.RequestJoin(ctx, m.ID, "m2")
	require.NoError(t, err)
	require.NotNil(t, jr)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.JoinMatch(ctx, m.ID, "m2")
			assert.NoError(t, err)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.svc.RespondToRequest(ctx, jr.ID, "m1", false, ActionAccept)
		assert.NoError(t, err)
	}()
	wg.Wait()

	var rows int
	require.NoError(t, f.db.Get(&rows, "SELECT COUNT(*) FROM participants WHERE match_id = ? AND member_id = 'm2'", m.ID))
	assert.Equal(t, 1, rows)
	assert.Len(t, f.notes.EventsOfKind(notifier.ParticipantJoined), 1)

	stored, err := f.store.GetJoinRequest(ctx, jr.ID)
	require.NoError(t, err)
	assert.Equal(t, match.JoinAccepted, stored.Status)
}
