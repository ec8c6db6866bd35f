package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultBustChannel is the pub/sub channel instances exchange busts on.
const DefaultBustChannel = "pricing_engine:cache_bust"

// BustMessage describes one bust. Prefix busts match every key starting with Key.
type BustMessage struct {
	Key    string `json:"key"`
	Prefix bool   `json:"prefix"`
	Origin string `json:"origin,omitempty"`
}

// BustPublisher fans a local bust out to other instances.
type BustPublisher interface {
	PublishBust(ctx context.Context, msg BustMessage) error
}

type pubSubClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// RedisBus propagates busts between instances over Redis pub/sub. Each
// instance tags its messages with an origin id and ignores its own echoes.
type RedisBus struct {
	client  pubSubClient
	channel string
	origin  string
	logger  *slog.Logger
}

// NewRedisBus creates a bus on channel. An empty channel uses DefaultBustChannel.
func NewRedisBus(client redis.UniversalClient, channel string, logger *slog.Logger) *RedisBus {
	return newRedisBus(client, channel, logger)
}

func newRedisBus(client pubSubClient, channel string, logger *slog.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultBustChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBus{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

func (b *RedisBus) PublishBust(ctx context.Context, msg BustMessage) error {
	msg.Origin = b.origin
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode bust message: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish bust to %s: %w", b.channel, err)
	}
	return nil
}

// Run subscribes and applies remote busts to c until ctx is done.
func (b *RedisBus) Run(ctx context.Context, c *Coordinator) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}
	b.logger.Info("Listening for cache busts", slog.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(c, m.Payload)
		}
	}
}

// handle applies one payload and reports whether it was applied.
func (b *RedisBus) handle(c *Coordinator, payload string) bool {
	var msg BustMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		b.logger.Warn("Dropping malformed cache bust message", slog.String("error", err.Error()))
		return false
	}
	if msg.Origin == b.origin || msg.Key == "" {
		return false
	}
	c.ApplyRemote(msg)
	return true
}
