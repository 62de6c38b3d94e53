// Package redis provides the assessment cache in front of the PostgreSQL
// store. Cached values are JSON blobs keyed under a configurable prefix;
// the cache is strictly an accelerator and every caller must tolerate a miss.
package redis

import (
	"context"
	"errors"
	"math/rand"
	"time"

	jsoniter "github.com/json-iterator/go"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/cr625/proethica-sub007/internal/config"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = apperrors.New(apperrors.CodeNotFound, "cache miss")

// Cache is the caching contract used by the relevance service and the HTTP
// layer. It deliberately mirrors relevance.AssessmentCache plus a
// singleflight-protected read-through.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	Ping(ctx context.Context) error
	Close() error
}

type redisCache struct {
	rdb        *goredis.Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	group      singleflight.Group
}

// NewCache connects to Redis and verifies the connection with a ping.
func NewCache(cfg config.RedisConfig, log logging.Logger) (Cache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeCache, "redis connection failed")
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "proethica:"
	}
	ttl := cfg.DefaultTTL
	if ttl == 0 {
		ttl = time.Hour
	}

	log.Info("redis cache connected", logging.String("addr", cfg.Addr))

	return &redisCache{
		rdb:        rdb,
		logger:     log.Named("cache"),
		prefix:     prefix,
		defaultTTL: ttl,
	}, nil
}

func (c *redisCache) fullKey(key string) string { return c.prefix + key }

// jitterTTL spreads expirations +/- 10% so a scoring burst does not expire as
// a thundering herd.
func (c *redisCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.rdb.Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeCache, "cache read failed")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return apperrors.Wrap(err, apperrors.CodeSerialization, "cached value is not valid JSON")
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeSerialization, "failed to encode cache value")
	}
	if err := c.rdb.Set(ctx, c.fullKey(key), data, c.jitterTTL(ttl)).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCache, "cache write failed")
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = c.fullKey(k)
	}
	if err := c.rdb.Del(ctx, fullKeys...).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCache, "cache delete failed")
	}
	return nil
}

// GetOrSet is a read-through: on a miss the loader runs under singleflight so
// concurrent misses on the same key produce one load, and the loaded value is
// written back before being returned.
func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !apperrors.IsNotFound(err) {
		return err
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if setErr := c.Set(ctx, key, v, ttl); setErr != nil {
			c.logger.Warn("cache write-back failed", logging.String("key", key), logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return err
	}

	// The loader's value and dest may be different concrete types; round-trip
	// through the serializer to assign.
	data, err := json.Marshal(val)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeSerialization, "failed to encode loaded value")
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}
