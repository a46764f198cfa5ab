package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"payment-broker.backend/internal/domain/entities"
	"payment-broker.backend/pkg/logger"
)

func TestRedisPublisher_PublishesEnvelope(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "test:events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(func(ctx context.Context, channel string, message interface{}) (int64, error) {
		return client.Publish(ctx, channel, message).Result()
	}, "test:events")

	event := tenantCreated()
	require.NoError(t, pub.Handle(ctx, event))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
	assert.Equal(t, entities.EventTenantCreated, env.Name)
	assert.Equal(t, event.AggregateID().String(), env.AggregateID)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "ACME01", payload["companyCode"])
}

func TestRedisPublisher_DefaultChannelAndError(t *testing.T) {
	var gotChannel string
	pub := NewRedisPublisher(func(_ context.Context, channel string, _ interface{}) (int64, error) {
		gotChannel = channel
		return 0, errors.New("redis down")
	}, "")

	err := pub.Handle(context.Background(), tenantCreated())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Equal(t, DefaultChannel, gotChannel)
}

func TestLogHandler_WritesEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	orig := logger.GetLogger()
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(orig) })

	require.NoError(t, LogHandler()(context.Background(), tenantCreated()))

	entries := logs.FilterMessage("Domain event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, entities.EventTenantCreated, entries[0].ContextMap()["event"])
}
