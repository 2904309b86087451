package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
)

// HybridCacheService layers a fast cache (Redis) over a persistent one
// (MongoDB). L2 hits are copied back into L1 in the background.
type HybridCacheService struct {
	l1     ICacheService
	l2     ICacheService
	logger *zap.Logger
}

// NewHybridCacheService combines two caches.
func NewHybridCacheService(l1, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{l1: l1, l2: l2, logger: logger}
}

func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.ParseOutcome, bool, error) {
	outcome, found, err := hcs.l1.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("l1 cache error, falling back to l2", zap.Error(err))
	} else if found {
		return outcome, true, nil
	}

	outcome, found, err = hcs.l2.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := hcs.l1.Set(bgCtx, key, outcome); err != nil {
			hcs.logger.Warn("back-fill l1 cache", zap.Error(err), zap.String("key", key))
		}
	}()

	return outcome, true, nil
}

func (hcs *HybridCacheService) Set(ctx context.Context, key string, outcome *models.ParseOutcome) error {
	return hcs.both(func(c ICacheService) error { return c.Set(ctx, key, outcome) })
}

func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both(func(c ICacheService) error { return c.Delete(ctx, key) })
}

func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.both(func(c ICacheService) error { return c.Clear(ctx) }); err != nil {
		return err
	}
	hcs.logger.Info("cleared hybrid cache")
	return nil
}

// GetStats sums both layers; one failing layer is tolerated.
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	s1, err1 := hcs.l1.GetStats(ctx)
	s2, err2 := hcs.l2.GetStats(ctx)

	switch {
	case err1 != nil && err2 != nil:
		return nil, fmt.Errorf("both cache layers failed: %w", errors.Join(err1, err2))
	case err1 != nil:
		return s2, nil
	case err2 != nil:
		return s1, nil
	}

	hits := s1.TotalHits + s2.TotalHits
	misses := s2.TotalMiss
	return &CacheStats{
		Backend:    "hybrid",
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: s2.TotalItems,
	}, nil
}

func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.l1.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("l1 exists check failed, falling back to l2", zap.Error(err))
	} else if exists {
		return true, nil
	}
	return hcs.l2.Exists(ctx, key)
}

func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.l1.GetTTL(ctx, key)
}

func (hcs *HybridCacheService) Close() error {
	return hcs.both(func(c ICacheService) error { return c.Close() })
}

// both runs fn on the two layers in parallel and joins their errors.
func (hcs *HybridCacheService) both(fn func(ICacheService) error) error {
	errCh := make(chan error, 2)
	go func() { errCh <- fn(hcs.l1) }()
	go func() { errCh <- fn(hcs.l2) }()

	return errors.Join(<-errCh, <-errCh)
}
