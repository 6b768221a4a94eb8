package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/training-match/internal/match"
	"github.com/mauv0809/training-match/internal/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_PublishesEvent(t *testing.T) {
	client := NewMock()
	sink := NewSink(client, "")

	event := notifier.Event{
		Kind:      notifier.ParticipantJoined,
		MatchID:   7,
		MatchCode: "ABC234",
		Payload: notifier.ParticipantPayload{
			Participant: match.Participant{MatchID: 7, Key: match.MemberKey("m2"), DisplayName: "Bo"},
		},
		At: time.Now(),
	}
	require.NoError(t, sink.Notify(context.Background(), event))

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, DefaultTopic, calls[0].Topic)

	msg, err := Decode(client, calls[0].Data)
	require.NoError(t, err)
	assert.Equal(t, notifier.ParticipantJoined, msg.Kind)
	assert.Equal(t, int64(7), msg.MatchID)
	assert.Equal(t, "ABC234", msg.MatchCode)
	participant, ok := msg.Payload["participant"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Bo", participant["DisplayName"])
}

func TestSink_ReturnsPublishError(t *testing.T) {
	client := NewMock()
	client.SendMessageFunc = func(ctx context.Context, topic string, data any) error {
		return errors.New("unavailable")
	}
	sink := NewSink(client, "custom-topic")

	err := sink.Notify(context.Background(), notifier.Event{Kind: notifier.MatchDeleted})
	assert.Error(t, err)
	assert.Equal(t, "custom-topic", client.Calls()[0].Topic)
}
