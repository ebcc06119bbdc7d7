package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis pub/sub channel category events travel on.
const DefaultChannel = "wecamp:categories"

// RedisBridge mirrors hub events across processes. Events published
// locally are forwarded to Redis; events arriving from Redis with a foreign
// origin are republished on the local hub. Because forwarded events keep
// their origin, nothing is echoed back.
type RedisBridge struct {
	client  *redis.Client
	hub     *Hub
	channel string
}

// NewRedisBridge creates a bridge between hub and the given Redis client.
func NewRedisBridge(client *redis.Client, hub *Hub, channel string) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBridge{client: client, hub: hub, channel: channel}
}

// Run forwards events in both directions until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	// Wait for the subscription to be confirmed so no remote event published
	// right after start-up is lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	slog.Info("event bridge subscribed", "channel", b.channel, "origin", b.hub.Origin())

	local, cancel := b.hub.Subscribe(64)
	defer cancel()
	remote := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-local:
			if !ok {
				return nil
			}
			if e.Origin != b.hub.Origin() {
				continue
			}
			if err := b.forward(ctx, e); err != nil {
				slog.Warn("event bridge publish failed", "error", err, "kind", e.Kind)
			}
		case msg, ok := <-remote:
			if !ok {
				return nil
			}
			b.receive(ctx, msg.Payload)
		}
	}
}

func (b *RedisBridge) forward(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBridge) receive(ctx context.Context, payload string) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		slog.Warn("event bridge dropped malformed message", "error", err)
		return
	}
	if e.Origin == "" || e.Origin == b.hub.Origin() {
		return
	}
	b.hub.Publish(ctx, e)
}
