package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const initPingTimeout = 5 * time.Second

// Nil is returned by Get when the key does not exist
const Nil = redis.Nil

// ErrNotInitialized is returned by every operation before Init or SetClient
var ErrNotInitialized = errors.New("redis client not initialized")

var client *redis.Client

var pingClient = func(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}

// Init connects to url; a non-empty password overrides the one in the URL
func Init(url, password string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}
	if password != "" {
		opts.Password = password
	}

	client = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), initPingTimeout)
	defer cancel()
	return pingClient(ctx, client)
}

// SetClient swaps the shared client; tests point it at miniredis
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the shared client, nil before Init
func GetClient() *redis.Client {
	return client
}

func current() (*redis.Client, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return client, nil
}

// Close closes the client if one was initialized
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// Set stores value under key for expiration
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c, err := current()
	if err != nil {
		return err
	}
	return c.Set(ctx, key, value, expiration).Err()
}

// Get returns the value under key or Nil
func Get(ctx context.Context, key string) (string, error) {
	c, err := current()
	if err != nil {
		return "", err
	}
	return c.Get(ctx, key).Result()
}

// Del removes key
func Del(ctx context.Context, key string) error {
	c, err := current()
	if err != nil {
		return err
	}
	return c.Del(ctx, key).Err()
}

// SetNX stores value only when key is absent and reports whether it did
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c, err := current()
	if err != nil {
		return false, err
	}
	return c.SetNX(ctx, key, value, expiration).Result()
}

// Publish sends message on channel and returns the number of receivers
func Publish(ctx context.Context, channel string, message interface{}) (int64, error) {
	c, err := current()
	if err != nil {
		return 0, err
	}
	return c.Publish(ctx, channel, message).Result()
}

// Ping is the readiness check for the shared client
func Ping(ctx context.Context) error {
	c, err := current()
	if err != nil {
		return err
	}
	return pingClient(ctx, c)
}
