package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/address-normalizer/internal/gazetteer"
)

var (
	ErrCacheDisabled  = errors.New("cache is disabled")
	ErrSearchDisabled = errors.New("city search is disabled")
)

// AdminService exposes operational functions.
type AdminService struct {
	gaz       *gazetteer.Gazetteer
	cache     ICacheService
	searcher  CitySearch
	addresses *AddressService
	logger    *zap.Logger
}

// SeedResult reports a search index rebuild.
type SeedResult struct {
	CitiesIndexed    int   `json:"cities_indexed"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// SystemStats is the admin stats payload.
type SystemStats struct {
	Uptime        string                 `json:"uptime"`
	Gazetteer     gazetteer.Stats        `json:"gazetteer"`
	Cache         *CacheStats            `json:"cache,omitempty"`
	Service       map[string]interface{} `json:"service"`
	MemoryUsage   map[string]interface{} `json:"memory_usage"`
	SearchEnabled bool                   `json:"search_enabled"`
}

// NewAdminService wires the admin functions. cache and searcher may be nil.
func NewAdminService(gaz *gazetteer.Gazetteer, cache ICacheService, searcher CitySearch, addresses *AddressService, logger *zap.Logger) *AdminService {
	return &AdminService{
		gaz:       gaz,
		cache:     cache,
		searcher:  searcher,
		addresses: addresses,
		logger:    logger,
	}
}

// GetSystemStats collects gazetteer, cache, service and memory stats. A
// cache that cannot report is logged and left out.
func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := &SystemStats{
		Uptime:    time.Since(as.addresses.GetStartTime()).Round(time.Second).String(),
		Gazetteer: as.gaz.Stats(),
		Service:   as.addresses.GetStats(),
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
			"goroutines":     runtime.NumGoroutine(),
		},
		SearchEnabled: as.searcher != nil,
	}

	if as.cache != nil {
		cs, err := as.cache.GetStats(ctx)
		if err != nil {
			as.logger.Warn("cache stats unavailable", zap.Error(err))
		} else {
			stats.Cache = cs
		}
	}
	return stats, nil
}

// ClearCache drops every cached parse.
func (as *AdminService) ClearCache(ctx context.Context) error {
	if as.cache == nil {
		return ErrCacheDisabled
	}
	if err := as.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	as.logger.Info("cache cleared")
	return nil
}

// SeedSearch rebuilds the city index from the loaded gazetteer.
func (as *AdminService) SeedSearch() (*SeedResult, error) {
	if as.searcher == nil {
		return nil, ErrSearchDisabled
	}
	start := time.Now()

	if err := as.searcher.BuildIndex(); err != nil {
		return nil, fmt.Errorf("build city index: %w", err)
	}
	n, err := as.searcher.Seed(as.gaz)
	if err != nil {
		return nil, fmt.Errorf("seed city index: %w", err)
	}

	elapsed := time.Since(start)
	as.logger.Info("city index seeded",
		zap.Int("cities", n),
		zap.Duration("processing_time", elapsed))

	return &SeedResult{CitiesIndexed: n, ProcessingTimeMs: elapsed.Milliseconds()}, nil
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
