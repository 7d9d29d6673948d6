package redismodel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/ohler55/ojg/oj"
	"github.com/redis/go-redis/v9"

	"github.com/Arthur1/cachejax/model"
)

// Model reads JSON documents stored in Redis, one per logical path.
type Model struct {
	redisCache   *cache.Cache
	keyGenerator KeyGenerator
}

var _ model.Model = (*Model)(nil)

type RedisClient interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	SetXX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Option interface {
	apply(opts *options)
}

var (
	_ Option = keyGeneratorOption{}
	_ Option = localCacheOption{}
)

type options struct {
	keyGenerator KeyGenerator
	localCache   cache.LocalCache
}

type keyGeneratorOption struct {
	keyGenerator KeyGenerator
}

func (o keyGeneratorOption) apply(opts *options) {
	opts.keyGenerator = o.keyGenerator
}

func WithKeyGenerator(keyGenerator KeyGenerator) keyGeneratorOption {
	return keyGeneratorOption{keyGenerator}
}

type localCacheOption struct {
	localCache cache.LocalCache
}

func (o localCacheOption) apply(opts *options) {
	opts.localCache = o.localCache
}

// WithLocalCache keeps recently read documents in process, e.g.
// cache.NewTinyLFU. Writes made by other processes are only seen once the
// local entry expires.
func WithLocalCache(localCache cache.LocalCache) localCacheOption {
	return localCacheOption{localCache}
}

func New(redisCli RedisClient, opts ...Option) *Model {
	options := &options{
		keyGenerator: NewKeyGenerator("cachejax:"),
		localCache:   nil,
	}
	for _, o := range opts {
		o.apply(options)
	}

	redisCache := cache.New(&cache.Options{
		Redis:      redisCli,
		LocalCache: options.localCache,
	})
	return &Model{
		redisCache:   redisCache,
		keyGenerator: options.keyGenerator,
	}
}

func (m *Model) Key(path string) string {
	return m.keyGenerator.Key(path)
}

// Get returns the decoded document for path, or nil when none is stored.
func (m *Model) Get(ctx context.Context, path string) (any, error) {
	var b []byte
	if err := m.redisCache.Get(ctx, m.Key(path), &b); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	v, err := oj.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	return v, nil
}

// Store writes data as the document for path. It is meant for the producer
// that owns the model; lookups never write.
func (m *Model) Store(ctx context.Context, path string, data any, ttl time.Duration) error {
	b, err := oj.Marshal(data)
	if err != nil {
		return err
	}
	item := &cache.Item{
		Ctx:   ctx,
		Key:   m.Key(path),
		Value: b,
		TTL:   ttl,
	}
	return m.redisCache.Set(item)
}
