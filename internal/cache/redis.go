package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	unlockChannelPrefix = "unlocks:"
	statsKey            = "stats:unlock_counts"
)

// Cache wraps the Redis client used for unlock-event fan-out and the
// global stats cache
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies connectivity
func New(address, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// UnlockEvent is the payload published when a user unlocks an
// achievement
type UnlockEvent struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	Title         string    `json:"title"`
	Icon          string    `json:"icon,omitempty"`
	BadgeID       string    `json:"badge_id,omitempty"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// PublishUnlock publishes an unlock event on the user's channel
func (c *Cache) PublishUnlock(ctx context.Context, ev UnlockEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal unlock event: %w", err)
	}

	if err := c.client.Publish(ctx, unlockChannelPrefix+ev.UserID, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish unlock event: %w", err)
	}

	return nil
}

// SubscribeUnlocks subscribes to a user's unlock channel. The caller
// owns the subscription and must Close it.
func (c *Cache) SubscribeUnlocks(ctx context.Context, userID string) *redis.PubSub {
	return c.client.Subscribe(ctx, unlockChannelPrefix+userID)
}

// SetUnlockCounts caches the global per-achievement unlock counts
func (c *Cache) SetUnlockCounts(ctx context.Context, counts map[string]int, ttl time.Duration) error {
	payload, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to marshal unlock counts: %w", err)
	}

	if err := c.client.Set(ctx, statsKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache unlock counts: %w", err)
	}

	return nil
}

// GetUnlockCounts returns the cached counts, or (nil, nil) on a miss
func (c *Cache) GetUnlockCounts(ctx context.Context) (map[string]int, error) {
	payload, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, fmt.Errorf("failed to read unlock counts: %w", err)
	}

	var counts map[string]int
	if err := json.Unmarshal(payload, &counts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal unlock counts: %w", err)
	}

	return counts, nil
}

// HealthCheck verifies Redis connectivity
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}
