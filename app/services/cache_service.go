package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/address-normalizer/app/models"
)

type memoryEntry struct {
	outcome  *models.ParseOutcome
	storedAt time.Time
}

// CacheService is an in-memory cache with a fixed TTL.
type CacheService struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCacheService creates an in-memory cache. ttl <= 0 keeps entries
// forever.
func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (cs *CacheService) Get(ctx context.Context, key string) (*models.ParseOutcome, bool, error) {
	cs.mu.RLock()
	e, ok := cs.entries[key]
	cs.mu.RUnlock()

	if !ok || cs.expired(e) {
		cs.misses.Add(1)
		return nil, false, nil
	}
	cs.hits.Add(1)
	return e.outcome, true, nil
}

func (cs *CacheService) Set(ctx context.Context, key string, outcome *models.ParseOutcome) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.entries[key] = memoryEntry{outcome: outcome, storedAt: cs.now()}
	return nil
}

func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.entries, key)
	return nil
}

func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.entries = make(map[string]memoryEntry)
	cs.hits.Store(0)
	cs.misses.Store(0)
	return nil
}

// Size returns the number of stored entries, expired ones included.
func (cs *CacheService) Size() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return len(cs.entries)
}

func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	cs.mu.RLock()
	active := 0
	for _, e := range cs.entries {
		if !cs.expired(e) {
			active++
		}
	}
	cs.mu.RUnlock()

	hits, misses := cs.hits.Load(), cs.misses.Load()
	return &CacheStats{
		Backend:    "memory",
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(active),
	}, nil
}

// CleanupExpired drops expired entries and returns how many went.
func (cs *CacheService) CleanupExpired() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	removed := 0
	for key, e := range cs.entries {
		if cs.expired(e) {
			delete(cs.entries, key)
			removed++
		}
	}
	return removed
}

func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	e, ok := cs.entries[key]
	return ok && !cs.expired(e), nil
}

func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	e, ok := cs.entries[key]
	if !ok || cs.ttl <= 0 {
		return 0, nil
	}
	remaining := cs.ttl - cs.now().Sub(e.storedAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// StartCleanupWorker sweeps expired entries every interval until ctx ends.
func (cs *CacheService) StartCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

func (cs *CacheService) Close() error {
	return nil
}

func (cs *CacheService) expired(e memoryEntry) bool {
	return cs.ttl > 0 && cs.now().Sub(e.storedAt) > cs.ttl
}
