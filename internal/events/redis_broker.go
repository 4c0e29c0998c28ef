package events

import (
	"context"
	"io"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// pubSub is the slice of Redis the broker uses.
type pubSub interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan *redis.Message, io.Closer, error)
}

type redisPubSub struct {
	client *redis.Client
}

func (r redisPubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	return r.client.Publish(ctx, channel, payload).Err()
}

func (r redisPubSub) Subscribe(ctx context.Context, channel string) (<-chan *redis.Message, io.Closer, error) {
	sub := r.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}
	return sub.Channel(), sub, nil
}

// RedisBroker fans change events out across API instances through a Redis pub/sub
// channel. Publish sends to Redis; Run relays everything received on the channel into the
// local dispatcher, so local subscribers see writes from every instance, including this one.
type RedisBroker struct {
	redis   pubSub
	channel string
	local   Dispatcher
	logger  *zap.Logger
}

// NewRedisBroker wires a broker on top of a local dispatcher.
func NewRedisBroker(client *redis.Client, channel string, local Dispatcher, logger *zap.Logger) *RedisBroker {
	return &RedisBroker{redis: redisPubSub{client: client}, channel: channel, local: local, logger: logger}
}

// Publish sends the event to the shared channel. When Redis refuses the write the event is
// delivered to this instance's subscribers only.
func (b *RedisBroker) Publish(ctx context.Context, event ChangeEvent) error {
	payload, err := event.Marshal()
	if err != nil {
		return err
	}
	if err := b.redis.Publish(ctx, b.channel, payload); err != nil {
		b.logger.Warn("redis publish failed, delivering locally",
			zap.String("channel", b.channel),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return b.local.Publish(ctx, event)
	}
	return nil
}

// Subscribe registers on the local dispatcher.
func (b *RedisBroker) Subscribe(filter Filter, handler Handler) func() {
	return b.local.Subscribe(filter, handler)
}

// Run relays channel messages to local subscribers until ctx is cancelled.
func (b *RedisBroker) Run(ctx context.Context) error {
	messages, sub, err := b.redis.Subscribe(ctx, b.channel)
	if err != nil {
		return err
	}
	defer sub.Close()
	b.logger.Info("realtime relay subscribed", zap.String("channel", b.channel))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := UnmarshalChangeEvent([]byte(msg.Payload))
			if err != nil {
				b.logger.Warn("dropping malformed change event", zap.Error(err))
				continue
			}
			_ = b.local.Publish(ctx, event)
		}
	}
}
