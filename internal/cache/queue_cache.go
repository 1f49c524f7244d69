package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueTicket is one player waiting for an opponent
type QueueTicket struct {
	PlayerID   string    `json:"playerId"`
	GradeLevel int       `json:"gradeLevel"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// QueueCache handles the Redis-backed matchmaking queue. The list keeps
// arrival order; the set guards against double enqueue.
type QueueCache interface {
	Enqueue(ctx context.Context, ticket *QueueTicket) (bool, error)
	Dequeue(ctx context.Context) (*QueueTicket, error)
	Remove(ctx context.Context, playerID string) error
	Contains(ctx context.Context, playerID string) (bool, error)
	Len(ctx context.Context) (int64, error)
}

type queueCache struct {
	client *redis.Client
}

func NewQueueCache(client *redis.Client) QueueCache {
	return &queueCache{
		client: client,
	}
}

const (
	queueListKey = "mm:queue"
	queueSetKey  = "mm:queued"
)

func (c *queueCache) Enqueue(ctx context.Context, ticket *QueueTicket) (bool, error) {
	added, err := c.client.SAdd(ctx, queueSetKey, ticket.PlayerID).Result()
	if err != nil {
		return false, err
	}
	if added == 0 {
		return false, nil
	}
	data, err := json.Marshal(ticket)
	if err != nil {
		return false, err
	}
	if err := c.client.RPush(ctx, queueListKey, data).Err(); err != nil {
		c.client.SRem(ctx, queueSetKey, ticket.PlayerID)
		return false, err
	}
	return true, nil
}

func (c *queueCache) Dequeue(ctx context.Context) (*QueueTicket, error) {
	for {
		data, err := c.client.LPop(ctx, queueListKey).Result()
		if err == redis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		var ticket QueueTicket
		if err := json.Unmarshal([]byte(data), &ticket); err != nil {
			return nil, err
		}
		// skip tickets whose owner already left the queue
		removed, err := c.client.SRem(ctx, queueSetKey, ticket.PlayerID).Result()
		if err != nil {
			return nil, err
		}
		if removed == 0 {
			continue
		}
		return &ticket, nil
	}
}

func (c *queueCache) Remove(ctx context.Context, playerID string) error {
	return c.client.SRem(ctx, queueSetKey, playerID).Err()
}

func (c *queueCache) Contains(ctx context.Context, playerID string) (bool, error) {
	return c.client.SIsMember(ctx, queueSetKey, playerID).Result()
}

func (c *queueCache) Len(ctx context.Context) (int64, error) {
	return c.client.SCard(ctx, queueSetKey).Result()
}
