package keys

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"aegis/internal/domain"
)

type countingProvider struct {
	inner domain.CommunityKeyProvider
	calls int
}

func (c *countingProvider) GetCommunityKey(ctx context.Context, coiName string) ([]byte, error) {
	c.calls++
	return c.inner.GetCommunityKey(ctx, coiName)
}

func newTestCache(t *testing.T, mr *miniredis.Miniredis, source domain.CommunityKeyProvider) *RedisCache {
	t.Helper()
	cache, err := NewRedisCache(mr.Addr(), "", 0, source, time.Minute)
	if err != nil {
		t.Fatalf("new redis cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestRedisCacheServesSeededKey(t *testing.T) {
	mr := miniredis.RunT(t)
	key := bytes.Repeat([]byte{0x07}, communityKeySize)
	if err := mr.Set(redisKeyPrefix+"FVEY", base64.StdEncoding.EncodeToString(key)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cache := newTestCache(t, mr, nil)
	got, err := cache.GetCommunityKey(context.Background(), "FVEY")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Error("cached key mismatch")
	}
}

func TestRedisCacheFillsFromSource(t *testing.T) {
	mr := miniredis.RunT(t)
	key := bytes.Repeat([]byte{0x09}, communityKeySize)
	source := &countingProvider{inner: NewStatic(map[string][]byte{"FVEY": key})}
	cache := newTestCache(t, mr, source)

	for i := 0; i < 2; i++ {
		got, err := cache.GetCommunityKey(context.Background(), "FVEY")
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if !bytes.Equal(got, key) {
			t.Fatalf("get %d: key mismatch", i)
		}
	}
	if source.calls != 1 {
		t.Errorf("source calls = %d, want 1 (second hit should come from cache)", source.calls)
	}
	if !mr.Exists(redisKeyPrefix + "FVEY") {
		t.Error("key not written to cache")
	}
	if mr.TTL(redisKeyPrefix+"FVEY") <= 0 {
		t.Error("cache entry has no TTL")
	}
}

func TestRedisCacheRewritesCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	if err := mr.Set(redisKeyPrefix+"FVEY", "%%%not-base64%%%"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	key := bytes.Repeat([]byte{0x0b}, communityKeySize)
	source := &countingProvider{inner: NewStatic(map[string][]byte{"FVEY": key})}
	cache := newTestCache(t, mr, source)

	got, err := cache.GetCommunityKey(context.Background(), "FVEY")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Error("corrupt entry not bypassed")
	}
	if source.calls != 1 {
		t.Errorf("source calls = %d, want 1", source.calls)
	}
	stored, err := mr.Get(redisKeyPrefix + "FVEY")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if stored != base64.StdEncoding.EncodeToString(key) {
		t.Error("corrupt entry not rewritten")
	}
}

func TestRedisCacheSurvivesOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	key := bytes.Repeat([]byte{0x0c}, communityKeySize)
	cache := newTestCache(t, mr, NewStatic(map[string][]byte{"FVEY": key}))
	mr.Close()

	got, err := cache.GetCommunityKey(context.Background(), "FVEY")
	if err != nil {
		t.Fatalf("get during outage: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Error("source key mismatch during outage")
	}
}

func TestRedisCacheMissWithoutSource(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := newTestCache(t, mr, nil)

	_, err := cache.GetCommunityKey(context.Background(), "FVEY")
	if !errors.Is(err, domain.ErrCommunityKeyUnavailable) {
		t.Errorf("err = %v, want ErrCommunityKeyUnavailable", err)
	}
}

func TestRedisCacheInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	key := bytes.Repeat([]byte{0x0d}, communityKeySize)
	source := &countingProvider{inner: NewStatic(map[string][]byte{"FVEY": key})}
	cache := newTestCache(t, mr, source)

	if _, err := cache.GetCommunityKey(context.Background(), "FVEY"); err != nil {
		t.Fatalf("prime: %v", err)
	}
	if err := cache.Invalidate(context.Background(), "FVEY"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(redisKeyPrefix + "FVEY") {
		t.Error("entry still cached after invalidate")
	}
	if _, err := cache.GetCommunityKey(context.Background(), "FVEY"); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if source.calls != 2 {
		t.Errorf("source calls = %d, want 2 after invalidate", source.calls)
	}
}

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	if _, err := NewRedisCache("", "", 0, nil, 0); err == nil {
		t.Error("expected error for missing addr")
	}
}
