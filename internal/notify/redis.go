package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel toasts are relayed on
const DefaultChannel = "interview-console:toasts"

// RedisRelay shares toasts between console instances over Redis pub/sub
type RedisRelay struct {
	client     *redis.Client
	channel    string
	instanceID string
	notifier   *Notifier
}

// NewRedisRelay connects to Redis and registers the relay as the notifier's publisher
func NewRedisRelay(ctx context.Context, opts *redis.Options, channel string, notifier *Notifier) (*RedisRelay, error) {
	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisRelay(client, channel, notifier), nil
}

func newRedisRelay(client *redis.Client, channel string, notifier *Notifier) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	r := &RedisRelay{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		notifier:   notifier,
	}
	notifier.SetPublisher(r)
	return r
}

// InstanceID identifies this console instance on the channel
func (r *RedisRelay) InstanceID() string {
	return r.instanceID
}

// Publish implements Publisher
func (r *RedisRelay) Publish(ctx context.Context, t Toast) error {
	t.Origin = r.instanceID
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal toast: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish toast: %w", err)
	}
	return nil
}

// Start subscribes to the channel and feeds remote toasts into the notifier
func (r *RedisRelay) Start(ctx context.Context) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	go r.run(ctx, pubsub)
}

func (r *RedisRelay) run(ctx context.Context, pubsub *redis.PubSub) {
	defer pubsub.Close()
	slog.Info("toast relay started", "channel", r.channel, "instance_id", r.instanceID)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			slog.Info("toast relay stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *RedisRelay) handle(payload string) {
	var t Toast
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		slog.Debug("invalid relayed toast", "error", err)
		return
	}
	if t.Origin == r.instanceID {
		return
	}
	r.notifier.Receive(t)
}

// HealthCheck verifies Redis connectivity
func (r *RedisRelay) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisRelay) Close() error {
	return r.client.Close()
}
