package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/utafrali/brands-faas/pkg/errors"

	"github.com/utafrali/brands-faas/internal/domain"
)

const keyPrefix = "brands:list:"

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "brands_list_cache_lookups_total",
	Help: "Brand list cache lookups by result (hit, miss, error).",
}, []string{"result"})

// ListCache stores rendered brand list payloads in Redis. Entries carry no
// timestamp; the envelope is stamped at response time.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListCache creates a Redis-backed list cache. Entries expire after ttl.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{
		client: client,
		ttl:    ttl,
	}
}

// GetList returns the cached list for key. A miss yields an error wrapping
// apperrors.ErrNotFound.
func (c *ListCache) GetList(ctx context.Context, key string) (*domain.BrandList, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			lookups.WithLabelValues("miss").Inc()
			return nil, apperrors.NotFound("brand list", key)
		}
		lookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("redis get brand list: %w", err)
	}

	var list domain.BrandList
	if err := json.Unmarshal(data, &list); err != nil {
		lookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("unmarshal brand list: %w", err)
	}

	lookups.WithLabelValues("hit").Inc()
	return &list, nil
}

// SetList stores list under key with the configured TTL.
func (c *ListCache) SetList(ctx context.Context, key string, list *domain.BrandList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal brand list: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set brand list: %w", err)
	}

	return nil
}
