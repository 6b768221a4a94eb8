package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

// DefaultTopic is the topic match events are published to unless configured otherwise.
const DefaultTopic = "training-match-events"
