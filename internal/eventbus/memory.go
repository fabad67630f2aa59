package eventbus

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type memoryEventBus struct {
	pubsub *gochannel.GoChannel
}

// NewInMemoryEventBus returns an EventBus backed by a watermill go channel.
// It serves local runs without NATS and the router tests.
func NewInMemoryEventBus(logger *slog.Logger) EventBus {
	return &memoryEventBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, watermill.NewSlogLogger(logger)),
	}
}

func (b *memoryEventBus) Publish(topic string, msgs ...*message.Message) error {
	return publishRouted(b.pubsub, topic, msgs)
}

func (b *memoryEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// CreateStream is a no-op; go channels need no provisioning.
func (b *memoryEventBus) CreateStream(context.Context, string, ...string) error {
	return nil
}

func (b *memoryEventBus) Close() error {
	return b.pubsub.Close()
}
