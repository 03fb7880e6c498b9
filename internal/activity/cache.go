package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache keeps recent feeds in Redis under per-project versioned keys.
// Appends bump the version, which orphans every cached page of that project.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func versionKey(projectID uuid.UUID) string {
	return "activity:version:" + projectID.String()
}

func feedKey(projectID uuid.UUID, version int64, limit int) string {
	return fmt.Sprintf("activity:feed:%s:v%d:%d", projectID, version, limit)
}

// Version returns the project's current feed version; missing means zero.
func (c *Cache) Version(ctx context.Context, projectID uuid.UUID) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(projectID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return ver, err
}

// Bump invalidates every cached feed page of the project.
func (c *Cache) Bump(ctx context.Context, projectID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(projectID)).Err()
}

// Fetch serves a cached page or fills it through load. Concurrent misses for
// the same page share one load. Redis failures degrade to a direct load.
func (c *Cache) Fetch(ctx context.Context, projectID uuid.UUID, limit int, load func(context.Context) ([]Entry, error)) ([]Entry, error) {
	if c == nil || c.client == nil {
		return load(ctx)
	}
	ver, err := c.Version(ctx, projectID)
	if err != nil {
		c.logger.Warn("activity cache version", slog.Any("error", err))
		return load(ctx)
	}
	key := feedKey(projectID, ver, limit)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var entries []Entry
		if jsonErr := json.Unmarshal(raw, &entries); jsonErr == nil {
			return entries, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("activity cache read", slog.String("key", key), slog.Any("error", err))
		return load(ctx)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		entries, err := load(ctx)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(entries)
		if err == nil {
			err = c.client.Set(ctx, key, payload, c.ttl).Err()
		}
		if err != nil {
			c.logger.Warn("activity cache fill", slog.String("key", key), slog.Any("error", err))
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Entry), nil
}
