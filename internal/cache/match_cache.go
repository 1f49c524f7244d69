package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MatchMeta is the small lookup record kept for each live match so
// players can rediscover their battle after a page reload
type MatchMeta struct {
	MatchID   string    `json:"matchId"`
	PlayerIDs [2]string `json:"playerIds"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// MatchCache handles Redis operations for live match metadata
type MatchCache interface {
	SetMeta(ctx context.Context, meta *MatchMeta) error
	GetMeta(ctx context.Context, matchID string) (*MatchMeta, error)
	Delete(ctx context.Context, matchID string) error
}

type matchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMatchCache(client *redis.Client) MatchCache {
	return &matchCache{
		client: client,
		ttl:    2 * time.Hour,
	}
}

func (c *matchCache) key(matchID string) string {
	return fmt.Sprintf("match:%s:meta", matchID)
}

func (c *matchCache) SetMeta(ctx context.Context, meta *MatchMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(meta.MatchID), data, c.ttl).Err()
}

func (c *matchCache) GetMeta(ctx context.Context, matchID string) (*MatchMeta, error) {
	data, err := c.client.Get(ctx, c.key(matchID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta MatchMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *matchCache) Delete(ctx context.Context, matchID string) error {
	return c.client.Del(ctx, c.key(matchID)).Err()
}
