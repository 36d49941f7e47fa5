// Package bus implements the event bus port on watermill's gochannel
// pub/sub.
package bus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/lnshout/shoutout/internal/ports"
)

type watermillBus struct {
	pubSub *gochannel.GoChannel
}

var _ ports.EventBus = (*watermillBus)(nil)

func New() ports.EventBus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		newLogrusAdapter(),
	)
	return &watermillBus{pubSub: pubSub}
}

func (b *watermillBus) Publish(topic string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.pubSub.Publish(topic, msg)
}

func (b *watermillBus) Subscribe(ctx context.Context, topic string) (<-chan ports.Event, error) {
	messages, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	events := make(chan ports.Event)
	go func() {
		defer close(events)
		for msg := range messages {
			select {
			case events <- ports.Event{ID: msg.UUID, Payload: msg.Payload}:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return events, nil
}

func (b *watermillBus) Close() error {
	return b.pubSub.Close()
}
