package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
)

func TestCacheService_GetSet(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(time.Hour)

	_, found, err := cs.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	out := &models.ParseOutcome{Raw: "k", OverallConfidence: 7}
	require.NoError(t, cs.Set(ctx, "k", out))

	got, found, err := cs.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, out, got)

	exists, _ := cs.Exists(ctx, "k")
	assert.True(t, exists)

	stats, err := cs.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMiss)
	assert.Equal(t, int64(1), stats.TotalItems)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)

	require.NoError(t, cs.Delete(ctx, "k"))
	_, found, _ = cs.Get(ctx, "k")
	assert.False(t, found)
}

func TestCacheService_TTL(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(time.Minute)
	now := time.Now()
	cs.now = func() time.Time { return now }

	require.NoError(t, cs.Set(ctx, "k", &models.ParseOutcome{}))

	ttl, err := cs.GetTTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	now = now.Add(2 * time.Minute)
	_, found, _ := cs.Get(ctx, "k")
	assert.False(t, found)

	ttl, _ = cs.GetTTL(ctx, "k")
	assert.Zero(t, ttl)

	assert.Equal(t, 1, cs.CleanupExpired())
	assert.Zero(t, cs.Size())
}

func TestCacheService_Clear(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(0)

	require.NoError(t, cs.Set(ctx, "a", &models.ParseOutcome{}))
	require.NoError(t, cs.Set(ctx, "b", &models.ParseOutcome{}))
	require.NoError(t, cs.Clear(ctx))
	assert.Zero(t, cs.Size())
}

func TestCacheKeyAndFingerprint(t *testing.T) {
	assert.Equal(t, "1 Main St", CacheKey("  1 Main St\n"))
	assert.Equal(t, Fingerprint("a"), Fingerprint("a"))
	assert.NotEqual(t, Fingerprint("a"), Fingerprint("b"))
	assert.Contains(t, Fingerprint("a"), "sha256:")
}

type failingCache struct{ *CacheService }

func (failingCache) Get(context.Context, string) (*models.ParseOutcome, bool, error) {
	return nil, false, errors.New("down")
}

func (failingCache) Set(context.Context, string, *models.ParseOutcome) error {
	return errors.New("down")
}

func TestHybridCacheService(t *testing.T) {
	ctx := context.Background()
	l1 := NewCacheService(time.Hour)
	l2 := NewCacheService(time.Hour)
	h := NewHybridCacheService(l1, l2, zap.NewNop())

	out := &models.ParseOutcome{Raw: "x"}
	require.NoError(t, h.Set(ctx, "x", out))
	assert.Equal(t, 1, l1.Size())
	assert.Equal(t, 1, l2.Size())

	// an l2-only entry is found and copied back into l1
	require.NoError(t, l2.Set(ctx, "y", out))
	got, found, err := h.Get(ctx, "y")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, out, got)
	assert.Eventually(t, func() bool {
		ok, _ := l1.Exists(ctx, "y")
		return ok
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, h.Clear(ctx))
	assert.Zero(t, l1.Size())
	assert.Zero(t, l2.Size())
}

func TestHybridCacheService_L1Failure(t *testing.T) {
	ctx := context.Background()
	l2 := NewCacheService(time.Hour)
	h := NewHybridCacheService(failingCache{NewCacheService(time.Hour)}, l2, zap.NewNop())

	require.NoError(t, l2.Set(ctx, "k", &models.ParseOutcome{Raw: "k"}))
	_, found, err := h.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)

	assert.Error(t, h.Set(ctx, "z", &models.ParseOutcome{}))
	// the healthy layer still stored it
	ok, _ := l2.Exists(ctx, "z")
	assert.True(t, ok)
}
