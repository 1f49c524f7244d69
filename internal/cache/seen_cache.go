package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenCache tracks which questions a player was recently shown so the
// same question is not reissued across consecutive matches
type SeenCache interface {
	MarkSeen(ctx context.Context, playerID, questionID string) error
	SeenIDs(ctx context.Context, playerID string) ([]string, error)
}

type seenCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeenCache(client *redis.Client) SeenCache {
	return &seenCache{
		client: client,
		ttl:    6 * time.Hour,
	}
}

func (c *seenCache) key(playerID string) string {
	return fmt.Sprintf("player:%s:seen", playerID)
}

func (c *seenCache) MarkSeen(ctx context.Context, playerID, questionID string) error {
	key := c.key(playerID)
	if err := c.client.SAdd(ctx, key, questionID).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, c.ttl).Err()
}

func (c *seenCache) SeenIDs(ctx context.Context, playerID string) ([]string, error) {
	ids, err := c.client.SMembers(ctx, c.key(playerID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return ids, err
}
