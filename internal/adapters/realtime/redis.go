package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/redis/go-redis/v9"
)

// PubSubChannel carries every realtime envelope between processes.
const PubSubChannel = "jansankalp:realtime"

// RedisPublisher hands envelopes to whichever API processes hold the
// subscribed sessions.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	env, err := NewEnvelope(channel, event, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, PubSubChannel, raw).Err(); err != nil {
		return fmt.Errorf("%w: realtime publish: %v", domain.ErrDependencyUnavailable, err)
	}
	return nil
}

var _ ports.RealtimePublisher = (*RedisPublisher)(nil)

// Relay feeds envelopes published on Redis into hub until ctx ends.
func Relay(ctx context.Context, client *redis.Client, hub *Hub, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := client.Subscribe(ctx, PubSubChannel)
	defer func() { _ = pubsub.Close() }()
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", PubSubChannel, err)
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil || env.Channel == "" {
				logger.Warn("realtime envelope discarded",
					"module", "realtime",
					"layer", "adapter",
					"operation", "relay",
					"outcome", "malformed",
				)
				continue
			}
			hub.Deliver(env)
		}
	}
}
