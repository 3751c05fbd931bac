package pubsub

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	metaKeyTopic = "topic"
	metaKeyKey   = "key"
)

// WatermillBus implements Bus on watermill's in-memory GoChannel.
// Publish blocks until every subscriber has acked, so subscribers observe
// messages in publish order.
type WatermillBus struct {
	ch *gochannel.GoChannel
}

// NewWatermillBus creates the in-process bus.
func NewWatermillBus() *WatermillBus {
	logger := watermill.NewStdLogger(false, false)
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            64,
		BlockPublishUntilSubscriberAck: true,
	}, logger)
	return &WatermillBus{ch: ch}
}

func toWatermill(msg Message) *message.Message {
	wm := message.NewMessage(watermill.NewUUID(), msg.Payload)
	wm.Metadata.Set(metaKeyTopic, msg.Topic)
	wm.Metadata.Set(metaKeyKey, msg.Key)
	return wm
}

func fromWatermill(wm *message.Message) Message {
	return Message{
		Topic:   wm.Metadata.Get(metaKeyTopic),
		Key:     wm.Metadata.Get(metaKeyKey),
		Payload: wm.Payload,
	}
}

// Publish implements Publisher.
func (b *WatermillBus) Publish(ctx context.Context, msg Message) error {
	wm := toWatermill(msg)
	wm.SetContext(ctx)
	return b.ch.Publish(msg.Topic, wm)
}

// Subscribe implements Subscriber.
func (b *WatermillBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := b.ch.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for wm := range messages {
			if err := handler(ctx, fromWatermill(wm)); err != nil {
				log.Printf("[pubsub] handler failed topic=%s msg=%s: %v", topic, wm.UUID, err)
			}
			// Nack makes GoChannel redeliver forever; failures are logged instead.
			wm.Ack()
		}
	}()
	return nil
}

// Close stops every subscription.
func (b *WatermillBus) Close() error {
	return b.ch.Close()
}
