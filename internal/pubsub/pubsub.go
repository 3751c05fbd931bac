package pubsub

import "context"

// Message is the envelope carried on the in-process bus.
type Message struct {
	// Topic identifies the channel, e.g. "chat.message.appended".
	Topic string
	// Key scopes the message to one conversation (the match ID).
	Key string
	// Payload holds the JSON-encoded event.
	Payload []byte
}

// Handler processes one delivered message. It must not publish on the
// same bus or call back into the publisher's owner.
type Handler func(ctx context.Context, msg Message) error

// Publisher sends messages to subscribers of msg.Topic.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Subscriber starts delivering messages on topic to handler until ctx is
// cancelled. Subscribe returns immediately.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
}

// Bus is both ends of the channel.
type Bus interface {
	Publisher
	Subscriber
	Close() error
}
