package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

const (
	defaultLatestTTL = 5 * time.Minute

	// Streams are trimmed approximately; consumers that lag more than
	// this many decisions behind have lost the game anyway.
	maxStreamLen = 10_000
)

// RedisPublisher pushes poll decisions to Redis for downstream consumers:
// a per-game latest-state key with a short TTL, plus an append-only
// stream for anything that wants the full decision flow.
type RedisPublisher struct {
	client *redis.Client
	stream string
	ttl    time.Duration
}

// NewRedisPublisher connects to Redis and verifies the connection.
func NewRedisPublisher(addr, password string, db int, stream string, ttl time.Duration) (*RedisPublisher, error) {
	if ttl <= 0 {
		ttl = defaultLatestTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("publish.NewRedisPublisher: ping %s: %w", addr, err)
	}
	return &RedisPublisher{client: client, stream: stream, ttl: ttl}, nil
}

// PublishDecision writes the poll to the latest-state key and appends it
// to the decision stream in one round trip.
func (r *RedisPublisher) PublishDecision(ctx context.Context, p domain.PollRecord) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("publish.PublishDecision: marshal poll: %w", err)
	}

	key := fmt.Sprintf("pace:game:%s:latest", p.GameID)

	pipe := r.client.Pipeline()
	pipe.Set(ctx, key, data, r.ttl)
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"game_id":   p.GameID,
			"side":      string(p.Side),
			"triggered": strconv.FormatBool(p.Triggered),
		},
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish.PublishDecision: pipeline %s: %w", p.GameID, err)
	}
	return nil
}

// Close releases the Redis connection.
func (r *RedisPublisher) Close() error {
	return r.client.Close()
}
