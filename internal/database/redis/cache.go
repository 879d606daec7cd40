package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/evently/evently/internal/entity"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	trendingKeyPrefix = "events:trending:"
	viewsKey          = "events:views"
)

// EventCache кэширует публичные подборки мероприятий и накапливает
// счетчики просмотров до сброса воркером в Postgres.
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{client: client, ttl: ttl}
}

// GetTrending returns the cached trending list for the given limit, or
// (nil, false) on a miss. Cache errors degrade to a miss.
func (c *EventCache) GetTrending(ctx context.Context, limit int) ([]*entity.EventDTO, bool) {
	data, err := c.client.Get(ctx, trendingKey(limit)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logrus.Warnf("redis: failed to get trending cache: %v", err)
		return nil, false
	}

	var events []*entity.EventDTO
	if err := json.Unmarshal(data, &events); err != nil {
		logrus.Warnf("redis: failed to unmarshal trending cache: %v", err)
		return nil, false
	}

	return events, true
}

func (c *EventCache) SetTrending(ctx context.Context, limit int, events []*entity.EventDTO) {
	data, err := json.Marshal(events)
	if err != nil {
		logrus.Warnf("redis: failed to marshal trending cache: %v", err)
		return
	}

	if err := c.client.Set(ctx, trendingKey(limit), data, c.ttl).Err(); err != nil {
		logrus.Warnf("redis: failed to set trending cache: %v", err)
	}
}

// InvalidateTrending drops all cached trending lists. Called after any
// write that can change the public directory.
func (c *EventCache) InvalidateTrending(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, trendingKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logrus.Warnf("redis: failed to invalidate trending cache: %v", err)
		}
	}
	if err := iter.Err(); err != nil {
		logrus.Warnf("redis: failed to scan trending keys: %v", err)
	}
}

// IncrementViews bumps the in-cache view counter for an event. The counters
// live in a single hash and are periodically drained to Postgres.
func (c *EventCache) IncrementViews(ctx context.Context, eventID uuid.UUID) {
	if err := c.client.HIncrBy(ctx, viewsKey, eventID.String(), 1).Err(); err != nil {
		logrus.Warnf("redis: failed to increment views: %v", err)
	}
}

// RestoreViews puts a drained counter back, used when the flush to
// Postgres fails and the delta must survive until the next tick.
func (c *EventCache) RestoreViews(ctx context.Context, eventID uuid.UUID, delta int64) {
	if err := c.client.HIncrBy(ctx, viewsKey, eventID.String(), delta).Err(); err != nil {
		logrus.Warnf("redis: failed to restore view counter: %v", err)
	}
}

// DrainViews atomically reads and clears the accumulated view counters.
func (c *EventCache) DrainViews(ctx context.Context) (map[uuid.UUID]int64, error) {
	var getCmd *redis.StringStringMapCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		getCmd = pipe.HGetAll(ctx, viewsKey)
		pipe.Del(ctx, viewsKey)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to drain view counters: %w", err)
	}

	raw := getCmd.Val()
	counters := make(map[uuid.UUID]int64, len(raw))
	for key, value := range raw {
		id, err := uuid.Parse(key)
		if err != nil {
			logrus.Warnf("redis: skipping malformed view counter key %q", key)
			continue
		}
		delta, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			logrus.Warnf("redis: skipping malformed view counter value %q", value)
			continue
		}
		counters[id] = delta
	}

	return counters, nil
}

func trendingKey(limit int) string {
	return fmt.Sprintf("%s%d", trendingKeyPrefix, limit)
}
