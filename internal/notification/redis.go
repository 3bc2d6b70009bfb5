package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list notifications are appended to.
const DefaultRedisKey = "notifications:v1:transfers"

// RedisNotifier appends JSON-encoded messages to a Redis list consumed by
// downstream delivery workers.
type RedisNotifier struct {
	cache *redis.Client
	key   string
}

// NewRedisNotifier builds a notifier writing to key, or DefaultRedisKey when empty.
func NewRedisNotifier(cache *redis.Client, key string) *RedisNotifier {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisNotifier{cache: cache, key: key}
}

// Send pushes the message onto the list.
func (n *RedisNotifier) Send(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := n.cache.RPush(ctx, n.key, payload).Err(); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}
