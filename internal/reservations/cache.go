package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/D0mbrowski/Site-Camping/internal/logging"
	"github.com/D0mbrowski/Site-Camping/internal/metrics"
)

const (
	defaultCacheKey    = "camping:reservations:rows"
	defaultLoadTimeout = 30 * time.Second
)

// CachedSource keeps the last export in Redis so every cabin change does not
// hit the spreadsheet. Concurrent misses share one upstream fetch. When Redis
// is unavailable it reads straight from the wrapped source.
//
// The shared fetch is detached from the caller that started it: a caller
// whose context ends stops waiting, the others still get the rows.
type CachedSource struct {
	src         Source
	redis       *redis.Client
	key         string
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
	logger      *logging.Logger
	metrics     *metrics.BookingMetrics
}

func NewCachedSource(src Source, rdb *redis.Client, ttl time.Duration, logger *logging.Logger, m *metrics.BookingMetrics) *CachedSource {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedSource{
		src:         src,
		redis:       rdb,
		key:         defaultCacheKey,
		ttl:         ttl,
		loadTimeout: defaultLoadTimeout,
		logger:      logger,
		metrics:     m,
	}
}

func (c *CachedSource) Rows(ctx context.Context) ([][]string, error) {
	if rows, ok := c.lookup(ctx); ok {
		return rows, nil
	}
	return c.shared(ctx)
}

// Refresh reloads the export from the wrapped source and rewrites the cache.
func (c *CachedSource) Refresh(ctx context.Context) error {
	_, err := c.shared(ctx)
	return err
}

// shared joins the in-flight load, or starts one bounded by loadTimeout
// instead of by ctx.
func (c *CachedSource) shared(ctx context.Context) ([][]string, error) {
	ch := c.group.DoChan(c.key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		return c.load(lctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([][]string), nil
	}
}

// Invalidate drops the cached export.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, c.key).Err()
}

func (c *CachedSource) lookup(ctx context.Context) ([][]string, bool) {
	data, err := c.redis.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.ObserveCache("miss")
		return nil, false
	}
	if err != nil {
		c.metrics.ObserveCache("error")
		c.logger.Warn("reservations cache read failed", "error", err)
		return nil, false
	}
	var rows [][]string
	if err := json.Unmarshal(data, &rows); err != nil {
		c.metrics.ObserveCache("error")
		c.logger.Warn("reservations cache entry corrupt", "error", err)
		return nil, false
	}
	c.metrics.ObserveCache("hit")
	return rows, true
}

func (c *CachedSource) load(ctx context.Context) ([][]string, error) {
	rows, err := c.src.Rows(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("reservations: encode cache entry: %w", err)
	}
	if err := c.redis.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("reservations cache write failed", "error", err)
	}
	return rows, nil
}
