package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jobpulse/backend/internal/domain"
)

const seenKeyPrefix = "jobpulse:seen:"

// SeenCache marks postings as ingested across runs so downstream consumers
// can filter repeats cheaply.
type SeenCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeenCache creates and verifies a Redis-backed seen-set.
func NewSeenCache(ctx context.Context, redisURL string, ttl time.Duration) (*SeenCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &SeenCache{client: rdb, ttl: ttl}, nil
}

func seenKey(job domain.JobPosting) string {
	if job.JobID != "" {
		return seenKeyPrefix + job.JobID
	}
	return seenKeyPrefix + strings.ToLower(job.Title) + "|" + strings.ToLower(job.CompanyName)
}

// MarkSeen records every posting in the set with the configured TTL.
func (c *SeenCache) MarkSeen(ctx context.Context, jobs []domain.JobPosting) error {
	pipe := c.client.Pipeline()
	for _, job := range jobs {
		pipe.Set(ctx, seenKey(job), 1, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark postings seen: %w", err)
	}
	return nil
}

// Seen reports whether a posting was ingested by a previous run.
func (c *SeenCache) Seen(ctx context.Context, job domain.JobPosting) (bool, error) {
	n, err := c.client.Exists(ctx, seenKey(job)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen key: %w", err)
	}
	return n > 0, nil
}

// Close releases the client.
func (c *SeenCache) Close() error {
	return c.client.Close()
}
