package feed

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "reservations:changed"

// RedisBroadcaster publishes reservation changes on a Redis pub/sub channel.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
}

// NewRedisBroadcaster creates a broadcaster on the given client and channel.
func NewRedisBroadcaster(client *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroadcaster{client: client, channel: channel}
}

// Publish announces that the reservation collection changed.
func (b *RedisBroadcaster) Publish(ctx context.Context) error {
	if err := b.client.Publish(ctx, b.channel, "changed").Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Listen calls onMessage for every change announced on the channel until ctx is done.
func (b *RedisBroadcaster) Listen(ctx context.Context, onMessage func()) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-messages:
			if !ok {
				return nil
			}
			onMessage()
		}
	}
}
