package pubsub

import "context"

// PubSubClient publishes msgpack encoded messages to Pub/Sub topics.
type PubSubClient interface {
	SendMessage(ctx context.Context, topic string, data any) error
	ProcessMessage(data []byte, returnValue any) error
	Close() error
}
