package pubsub

import (
	"context"

	"github.com/mauv0809/training-match/internal/notifier"
)

var _ notifier.Notifier = (*Sink)(nil)

// Sink publishes every match event to one Pub/Sub topic so other services
// can follow matches.
type Sink struct {
	client PubSubClient
	topic  string
}

// NewSink creates a Sink publishing to topic, or DefaultTopic when empty.
func NewSink(client PubSubClient, topic string) *Sink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Sink{client: client, topic: topic}
}

func (s *Sink) Notify(ctx context.Context, event notifier.Event) error {
	return s.client.SendMessage(ctx, s.topic, event)
}

// Message is the decoded form of a published event. The payload is kept
// generic since its type depends on the event kind.
type Message struct {
	Kind           notifier.Kind  `msgpack:"kind"`
	MatchID        int64          `msgpack:"match_id"`
	MatchCode      string         `msgpack:"match_code"`
	TargetMemberID string         `msgpack:"target_member_id,omitempty"`
	Payload        map[string]any `msgpack:"payload,omitempty"`
}

// Decode reads a message published by a Sink.
func Decode(client PubSubClient, data []byte) (*Message, error) {
	var msg Message
	if err := client.ProcessMessage(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
