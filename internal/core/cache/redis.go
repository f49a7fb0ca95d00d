package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store is a byte cache with read-through loading.
type Store interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
}

// Cache is a redis-backed Store. Redis failures degrade to calling load.
type Cache struct {
	RDB redis.Cmdable
	Log *zap.Logger
	sf  singleflight.Group
}

func New(addr, pass string, db int, l *zap.Logger) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), l)
}

func NewWithClient(rdb redis.Cmdable, l *zap.Logger) *Cache {
	if l == nil {
		l = zap.NewNop()
	}
	return &Cache{RDB: rdb, Log: l}
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	b, err := c.RDB.Get(ctx, key).Bytes()
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.Log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	// collapse concurrent misses on the same key
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if e := c.RDB.Set(ctx, key, b, ttl).Err(); e != nil {
			c.Log.Warn("cache set failed", zap.String("key", key), zap.Error(e))
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.RDB.Del(ctx, keys...).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.RDB.Ping(ctx).Err()
}

// Nop always loads; used when no redis address is configured.
type Nop struct{}

func (Nop) GetOrLoad(ctx context.Context, _ string, _ time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	return load(ctx)
}

func (Nop) Del(context.Context, ...string) error { return nil }
