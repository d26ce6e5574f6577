package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// StatisticsKey holds the cached statistics payload.
	StatisticsKey = "floatchat:statistics"

	// StatisticsTTL keeps statistics fresh enough for dashboards.
	StatisticsTTL = 60 * time.Second

	// AnswerTTL bounds staleness of cached aggregate answers.
	AnswerTTL = 5 * time.Minute

	answerKeyPrefix = "floatchat:answer:"
)

// Cache stores computed answers and statistics in Redis. Every failure is
// logged and swallowed: Redis being down never affects correctness, only
// latency.
type Cache struct {
	redis *redis.Client
	log   zerolog.Logger
}

func New(client *redis.Client, logger zerolog.Logger) *Cache {
	return &Cache{redis: client, log: logger}
}

// AnswerKey normalizes a question into a cache key: lowercased with
// whitespace collapsed.
func AnswerKey(queryText string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(queryText)), " ")
	return answerKeyPrefix + normalized
}

// GetJSON loads a cached value into v. Returns false on miss or any error.
func (c *Cache) GetJSON(ctx context.Context, key string, v any) bool {
	data, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

// SetJSON stores v under key with the given TTL, best effort.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
