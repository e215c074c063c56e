package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/ingesttest"
)

func newTestRedis(t *testing.T, cfg RedisConfig) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("miniredis unavailable: %v", err)
	}
	t.Cleanup(srv.Close)

	cfg.URL = "redis://" + srv.Addr()
	c, err := NewRedisCache(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, srv
}

func TestRedisCache_Contract(t *testing.T) {
	suite := &ingesttest.CacheSuite{
		NewCache: func(t *testing.T) ingest.Cache {
			c, _ := newTestRedis(t, RedisConfig{})
			return c
		},
	}
	suite.Run(t)
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	c, srv := newTestRedis(t, RedisConfig{KeyPrefix: "test:"})

	if err := c.Put(context.Background(), "abc", []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !srv.Exists("test:abc") {
		t.Errorf("key %q not found in redis; keys = %v", "test:abc", srv.Keys())
	}
}

func TestRedisCache_TTL(t *testing.T) {
	c, srv := newTestRedis(t, RedisConfig{TTL: time.Minute})
	ctx := context.Background()

	if err := c.Put(ctx, "abc", []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	srv.FastForward(2 * time.Minute)

	if _, ok, err := c.Get(ctx, "abc"); err != nil || ok {
		t.Errorf("Get() after TTL = ok %v, err %v; want miss", ok, err)
	}
}

func TestRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{URL: "http://nope"})
	if err == nil {
		t.Fatal("NewRedisCache() with bad URL succeeded")
	}
	if _, ok := err.(*ingest.ConfigError); !ok {
		t.Errorf("error type = %T, want *ingest.ConfigError", err)
	}
}
