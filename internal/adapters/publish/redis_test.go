//go:build integration

package publish_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pacebot/internal/adapters/publish"
	"github.com/alejandrodnm/pacebot/internal/domain"
)

const testStream = "pace.decisions.test"

func testAddr() string {
	if addr := os.Getenv("REDIS_TEST_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func TestRedisPublisher_PublishDecision(t *testing.T) {
	ctx := context.Background()

	pub, err := publish.NewRedisPublisher(testAddr(), os.Getenv("REDIS_TEST_PASSWORD"), 1, testStream, time.Minute)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer pub.Close()

	raw := redis.NewClient(&redis.Options{
		Addr:     testAddr(),
		Password: os.Getenv("REDIS_TEST_PASSWORD"),
		DB:       1,
	})
	t.Cleanup(func() {
		raw.Del(ctx, "pace:game:it-g1:latest", testStream)
		raw.Close()
	})

	poll := domain.PollRecord{
		ID:         "it-p1",
		Timestamp:  time.Now().UTC(),
		GameID:     "it-g1",
		HomeTeam:   "Butler Bulldogs",
		AwayTeam:   "Creighton Bluejays",
		HomeScore:  58,
		AwayScore:  54,
		Line:       145,
		Side:       domain.SideUnder,
		Triggered:  true,
		Confidence: 87,
		Units:      2,
	}
	require.NoError(t, pub.PublishDecision(ctx, poll))

	// latest-state key holds the full poll as JSON
	data, err := raw.Get(ctx, "pace:game:it-g1:latest").Result()
	require.NoError(t, err)
	var got domain.PollRecord
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, "it-g1", got.GameID)
	assert.Equal(t, domain.SideUnder, got.Side)
	assert.InDelta(t, 87, got.Confidence, 0.001)

	ttl, err := raw.TTL(ctx, "pace:game:it-g1:latest").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "latest key expires")

	// the stream carries the decision with routing fields
	entries, err := raw.XRange(ctx, testStream, "-", "+").Result()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "it-g1", last.Values["game_id"])
	assert.Equal(t, "under", last.Values["side"])
	assert.Equal(t, "true", last.Values["triggered"])
}
