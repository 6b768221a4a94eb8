package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/training-match/internal/match"
	"github.com/mauv0809/training-match/internal/notifier"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	calls                  int
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.calls++
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func completedEvent() notifier.Event {
	final := 191.5
	return notifier.Event{
		Kind:      notifier.MatchCompleted,
		MatchCode: "ABC234",
		Payload: notifier.CompletedPayload{
			Match: match.Match{Code: "ABC234", Name: "Tuesday", WeaponClass: match.WeaponClassC, CreatedAt: time.Now()},
			Standings: []notifier.Standing{
				{Rank: 1, DisplayName: "Anna", Score: 182, SeriesCount: 4, FinalScore: &final},
				{Rank: 2, DisplayName: "Bo", Score: 170, SeriesCount: 4},
			},
		},
	}
}

func TestNotify_DryRun(t *testing.T) {
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	n := NewNotifierWithAPI(nil, "C123", true)
	require.NoError(t, n.Notify(context.Background(), completedEvent()))
}

func TestNotify_PostsCompletedMatch(t *testing.T) {
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}
	n := NewNotifierWithAPI(api, "C123", false)

	require.NoError(t, n.Notify(context.Background(), completedEvent()))
	assert.Equal(t, 1, api.calls)
}

func TestNotify_IgnoresOtherKinds(t *testing.T) {
	api := &mockSlackAPI{}
	n := NewNotifierWithAPI(api, "C123", false)

	require.NoError(t, n.Notify(context.Background(), notifier.Event{Kind: notifier.ScoreUpdated}))
	assert.Zero(t, api.calls)
}

func TestNotify_Failure(t *testing.T) {
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", errors.New("slack API error")
		},
	}
	n := NewNotifierWithAPI(api, "C123", false)

	err := n.Notify(context.Background(), completedEvent())
	assert.Error(t, err)
}

func TestNotify_RejectsUnknownPayload(t *testing.T) {
	n := NewNotifierWithAPI(&mockSlackAPI{}, "C123", false)
	err := n.Notify(context.Background(), notifier.Event{Kind: notifier.MatchCompleted, Payload: "nope"})
	assert.Error(t, err)
}

func TestFormatResult(t *testing.T) {
	msg := formatResult(completedEvent().Payload.(notifier.CompletedPayload))
	require.Len(t, msg.Blocks.BlockSet, 3)

	section, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "1. 🥇 Anna: 182 (4 series) | with handicap 191.50")
	assert.Contains(t, section.Text.Text, "2. 🥈 Bo: 170 (4 series)")
}

func TestFormatResult_NoScores(t *testing.T) {
	msg := formatResult(notifier.CompletedPayload{Match: match.Match{Code: "ABC234", CreatedAt: time.Now()}})
	require.Len(t, msg.Blocks.BlockSet, 3)
	section := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	assert.Equal(t, "No scores reported.", section.Text.Text)
}
