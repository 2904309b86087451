// Package bootstrap builds the service graph shared by the HTTP server and
// the CLI from a loaded config.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/config"
	"github.com/address-normalizer/app/services"
	"github.com/address-normalizer/internal/external"
	"github.com/address-normalizer/internal/gazetteer"
	"github.com/address-normalizer/internal/normalizer"
	"github.com/address-normalizer/internal/parser"
	"github.com/address-normalizer/internal/search"
)

const warmUpLimit = 1000

// App holds the wired services.
type App struct {
	Config    *config.Config
	Gazetteer *gazetteer.Gazetteer
	Corrector *search.CityCorrector
	Parser    *parser.AddressParser
	Cache     services.ICacheService
	Searcher  services.CitySearch
	Addresses *services.AddressService
	Cities    *services.CityService
	Admin     *services.AdminService

	logger  *zap.Logger
	cancel  context.CancelFunc
	closers []func(context.Context) error
}

// Build loads the gazetteer and wires every service. A gazetteer that cannot
// be loaded is an error; cache and search backends that cannot be reached
// are logged and skipped.
func Build(cfg *config.Config, logger *zap.Logger) (*App, error) {
	gaz, err := gazetteer.Load(cfg.Gazetteer.Path)
	if err != nil {
		return nil, fmt.Errorf("load gazetteer: %w", err)
	}
	stats := gaz.Stats()
	logger.Info("gazetteer loaded",
		zap.String("path", cfg.Gazetteer.Path),
		zap.Int("states", stats.States),
		zap.Int("cities", stats.Cities))

	cleaner, err := normalizer.NewCleaner()
	if err != nil {
		return nil, fmt.Errorf("build cleaner: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Config:    cfg,
		Gazetteer: gaz,
		logger:    logger,
		cancel:    cancel,
	}

	a.Corrector = search.NewCityCorrector(gaz, search.CorrectorConfig{
		StateThreshold:  cfg.Parser.StateThreshold,
		GlobalThreshold: cfg.Parser.GlobalThreshold,
	}, logger)
	a.Parser = parser.NewAddressParser(cleaner, external.NewTagger(), a.Corrector, logger)
	if !external.LibpostalAvailable {
		logger.Info("libpostal not compiled in, using segment tagger")
	}

	cache, err := a.buildCache(ctx)
	if err != nil {
		logger.Warn("cache unavailable, parsing uncached",
			zap.String("backend", cfg.Cache.Backend), zap.Error(err))
	} else if cache != nil {
		a.Cache = cache
		a.closers = append(a.closers, func(context.Context) error { return cache.Close() })
	}

	if cfg.Meilisearch.Enabled {
		searcher, err := search.NewCitySearcher(search.SearchConfig{
			Host:      cfg.Meilisearch.URL,
			APIKey:    cfg.Meilisearch.APIKey,
			IndexName: cfg.Meilisearch.Index,
			Timeout:   cfg.Meilisearch.Timeout,
		}, logger)
		if err != nil {
			logger.Warn("meilisearch unavailable, suggestions use the gazetteer", zap.Error(err))
		} else {
			a.Searcher = searcher
		}
	}

	a.Addresses = services.NewAddressService(a.Parser, a.Cache, services.AddressServiceConfig{
		Workers:      cfg.Batch.Workers,
		MaxAddresses: cfg.Batch.MaxAddresses,
		JobTTL:       cfg.Batch.JobTTL,
	}, logger)
	if cfg.Batch.JobTTL > 0 {
		a.Addresses.StartJobCleanupWorker(ctx, cleanupInterval(cfg.Batch.JobTTL))
	}
	a.Cities = services.NewCityService(a.Corrector, a.Searcher, logger)
	a.Admin = services.NewAdminService(gaz, a.Cache, a.Searcher, a.Addresses, logger)

	return a, nil
}

// buildCache returns a nil cache for backend "none".
func (a *App) buildCache(ctx context.Context) (services.ICacheService, error) {
	cfg := a.Config
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return nil, nil

	case config.CacheMemory:
		mem := services.NewCacheService(cfg.Cache.TTL)
		if cfg.Cache.TTL > 0 {
			mem.StartCleanupWorker(ctx, cleanupInterval(cfg.Cache.TTL))
		}
		return mem, nil

	case config.CacheRedis:
		return services.NewRedisCacheService(cfg.Redis.URL, cfg.Cache.TTL, a.logger)

	case config.CacheMongo:
		return a.mongoCache(ctx)

	case config.CacheHybrid:
		l1, err := services.NewRedisCacheService(cfg.Redis.URL, cfg.Cache.TTL, a.logger)
		if err != nil {
			return nil, err
		}
		l2, err := a.mongoCache(ctx)
		if err != nil {
			_ = l1.Close()
			return nil, err
		}
		return services.NewHybridCacheService(l1, l2, a.logger), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

func (a *App) mongoCache(ctx context.Context) (*services.MongoCacheService, error) {
	db, err := a.connectMongo(ctx)
	if err != nil {
		return nil, err
	}
	mc, err := services.NewMongoCacheService(db, a.Config.Cache.L1Size, a.Config.Cache.TTL, a.logger)
	if err != nil {
		return nil, err
	}
	if err := mc.WarmUp(ctx, warmUpLimit); err != nil {
		a.logger.Warn("cache warm-up failed", zap.Error(err))
	}
	return mc, nil
}

func (a *App) connectMongo(ctx context.Context) (*mongo.Database, error) {
	a.logger.Info("connecting to MongoDB", zap.String("database", a.Config.Mongo.Database))

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.Config.Mongo.URL))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	a.closers = append(a.closers, client.Disconnect)
	return client.Database(a.Config.Mongo.Database), nil
}

// cleanupInterval sweeps expired entries a few times per TTL, at most once a
// minute.
func cleanupInterval(ttl time.Duration) time.Duration {
	iv := ttl / 4
	if iv < time.Minute {
		iv = time.Minute
	}
	return iv
}

// Close stops background workers and releases backend connections.
func (a *App) Close(ctx context.Context) error {
	a.cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
