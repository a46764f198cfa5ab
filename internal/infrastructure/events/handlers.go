package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"payment-broker.backend/internal/domain/entities"
	"payment-broker.backend/pkg/logger"
)

// DefaultChannel is the Redis channel domain events are published on
const DefaultChannel = "broker:events"

// LogHandler writes every event to the structured log
func LogHandler() Handler {
	return func(ctx context.Context, event entities.DomainEvent) error {
		logger.Info(ctx, "Domain event",
			zap.String("event", event.EventName()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Time("occurred_at", event.OccurredAt()),
		)
		return nil
	}
}

// Envelope is the wire shape of a published event
type Envelope struct {
	Name        string          `json:"name"`
	AggregateID string          `json:"aggregateId"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Payload     json.RawMessage `json:"payload"`
}

// PublishFunc sends message on a channel; it matches pkg/redis.Publish
type PublishFunc func(ctx context.Context, channel string, message interface{}) (int64, error)

// RedisPublisher publishes events as JSON envelopes
type RedisPublisher struct {
	publish PublishFunc
	channel string
}

// NewRedisPublisher creates a publisher; an empty channel uses DefaultChannel
func NewRedisPublisher(publish PublishFunc, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{publish: publish, channel: channel}
}

// Handle implements Handler
func (p *RedisPublisher) Handle(ctx context.Context, event entities.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventName(), err)
	}

	body, err := json.Marshal(Envelope{
		Name:        event.EventName(),
		AggregateID: event.AggregateID().String(),
		OccurredAt:  event.OccurredAt(),
		Payload:     payload,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope %s: %w", event.EventName(), err)
	}

	if _, err := p.publish(ctx, p.channel, body); err != nil {
		return fmt.Errorf("publish %s: %w", event.EventName(), err)
	}
	return nil
}
