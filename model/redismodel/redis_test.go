package redismodel

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/Arthur1/cachejax/internal/testutil"
)

type testKeyGenerator struct{}

func (g *testKeyGenerator) Key(_ string) string {
	return "test"
}

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("Default", func(t *testing.T) {
		t.Parallel()
		redisCli := redis.NewClient(&redis.Options{})
		m := New(redisCli)
		assert.IsType(t, &PrefixKeyGenerator{}, m.keyGenerator)
		assert.Equal(t, "cachejax:messages", m.Key("messages"))
		assert.NotEmpty(t, m.redisCache)
	})

	t.Run("WithKeyGenerator", func(t *testing.T) {
		t.Parallel()
		redisCli := redis.NewClient(&redis.Options{})
		keyGenerator := &testKeyGenerator{}
		m := New(redisCli, WithKeyGenerator(keyGenerator))
		assert.Equal(t, keyGenerator, m.keyGenerator)
		assert.Equal(t, "test", m.Key("messages"))
	})

	t.Run("WithLocalCache", func(t *testing.T) {
		t.Parallel()
		redisCli := redis.NewClient(&redis.Options{})
		localCache := cache.NewTinyLFU(10, time.Minute)
		New(redisCli, WithLocalCache(localCache))
	})
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	rs, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(rs.Close)
	return rs, redis.NewClient(&redis.Options{Addr: rs.Addr(), DB: 0})
}

func TestModelGet(t *testing.T) {
	t.Parallel()

	t.Run("nothing stored", func(t *testing.T) {
		t.Parallel()
		_, redisCli := newMiniredisClient(t)
		got, err := New(redisCli).Get(context.Background(), "messages")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("document written by another producer", func(t *testing.T) {
		t.Parallel()
		rs, redisCli := newMiniredisClient(t)
		assert.NoError(t, rs.Set("cachejax:messages", `[{"id":1},{"id":2}]`))

		got, err := New(redisCli).Get(context.Background(), "messages")
		assert.NoError(t, err)
		want := []any{map[string]any{"id": int64(1)}, map[string]any{"id": int64(2)}}
		testutil.NoDiff(t, want, got, nil)
	})

	t.Run("malformed document", func(t *testing.T) {
		t.Parallel()
		rs, redisCli := newMiniredisClient(t)
		assert.NoError(t, rs.Set("cachejax:messages", `[{"id":`))

		_, err := New(redisCli).Get(context.Background(), "messages")
		assert.Error(t, err)
	})
}

func TestModelStore(t *testing.T) {
	t.Parallel()
	rs, redisCli := newMiniredisClient(t)
	m := New(redisCli)
	ctx := context.Background()

	err := m.Store(ctx, "currentUser", map[string]any{"name": "bob"}, time.Hour)
	assert.NoError(t, err)
	got, err := m.Get(ctx, "currentUser")
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "bob"}, got)

	rs.FlushDB()
	got, err = m.Get(ctx, "currentUser")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
