package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/address-normalizer/app/models"
)

// CacheStats summarises cache effectiveness.
type CacheStats struct {
	Backend    string  `json:"backend"`
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService stores parse outcomes keyed by raw address text.
type ICacheService interface {
	Get(ctx context.Context, key string) (*models.ParseOutcome, bool, error)
	Set(ctx context.Context, key string, outcome *models.ParseOutcome) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	GetStats(ctx context.Context) (*CacheStats, error)
	Exists(ctx context.Context, key string) (bool, error)
	// GetTTL returns the remaining lifetime of key, 0 when unknown.
	GetTTL(ctx context.Context, key string) (time.Duration, error)
	Close() error
}

// CacheKey derives the lookup key for a raw address. Surrounding whitespace
// does not change the parse, so it does not change the key either.
func CacheKey(raw string) string {
	return strings.TrimSpace(raw)
}

// Fingerprint hashes a cache key for stores with bounded key sizes.
func Fingerprint(key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("sha256:%x", hash)
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
