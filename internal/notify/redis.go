package notify

import (
	"context"

	"github.com/redis/go-redis/v9"

	"go-interview-backend/pkg/logger"
)

type redisPublisher struct {
	client *redis.Client
}

// NewRedis wraps an established Redis connection as a Publisher backed by
// PUBLISH. Per-event failures are only logged.
func NewRedis(client *redis.Client) Publisher {
	return &redisPublisher{client: client}
}

func (p *redisPublisher) Publish(ctx context.Context, event Event) {
	data, ok := marshalEvent(event)
	if !ok {
		return
	}
	if err := p.client.Publish(ctx, Channel, data).Err(); err != nil {
		logger.Log.Warn("publish dashboard event failed", "type", event.Type, "error", err)
	}
}
