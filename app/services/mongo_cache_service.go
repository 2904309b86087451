package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
)

const addressCacheCollection = "address_cache"

// MongoCacheService is a persistent cache in MongoDB fronted by an
// in-process LRU.
type MongoCacheService struct {
	collection *mongo.Collection
	l1Cache    *lru.Cache[string, *models.ParseOutcome]
	logger     *zap.Logger
	ttl        time.Duration

	l1Hits    atomic.Int64
	mongoHits atomic.Int64
	misses    atomic.Int64
}

// NewMongoCacheService creates the collection indexes and the L1 cache.
func NewMongoCacheService(db *mongo.Database, l1Size int, ttl time.Duration, logger *zap.Logger) (*MongoCacheService, error) {
	l1Cache, err := lru.New[string, *models.ParseOutcome](l1Size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}

	collection := db.Collection(addressCacheCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "raw_fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "access_count", Value: -1}}},
	}
	if ttl > 0 {
		indexModels = append(indexModels, mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("could not create address_cache indexes", zap.Error(err))
	}

	return &MongoCacheService{
		collection: collection,
		l1Cache:    l1Cache,
		logger:     logger,
		ttl:        ttl,
	}, nil
}

// Get checks the LRU first, then MongoDB, promoting Mongo hits into the LRU.
func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.ParseOutcome, bool, error) {
	if outcome, ok := mcs.l1Cache.Get(key); ok {
		mcs.l1Hits.Add(1)
		return outcome, true, nil
	}

	var entry models.AddressCache
	err := mcs.collection.FindOne(ctx, bson.M{"raw_fingerprint": Fingerprint(key)}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		mcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query mongo cache: %w", err)
	}
	if entry.IsExpired(mcs.ttl) {
		mcs.misses.Add(1)
		return nil, false, nil
	}

	mcs.mongoHits.Add(1)
	go mcs.updateAccessStats(entry.ID)

	outcome := entry.Outcome
	mcs.l1Cache.Add(key, &outcome)
	return &outcome, true, nil
}

func (mcs *MongoCacheService) Set(ctx context.Context, key string, outcome *models.ParseOutcome) error {
	mcs.l1Cache.Add(key, outcome)

	fingerprint := Fingerprint(key)
	entry := models.NewAddressCache(fingerprint, *outcome)

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"raw_fingerprint": fingerprint}, entry, opts); err != nil {
		return fmt.Errorf("store mongo cache: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)

	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"raw_fingerprint": Fingerprint(key)}); err != nil {
		return fmt.Errorf("delete mongo cache: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()

	res, err := mcs.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("clear mongo cache: %w", err)
	}
	mcs.l1Hits.Store(0)
	mcs.mongoHits.Store(0)
	mcs.misses.Store(0)

	mcs.logger.Info("cleared mongo cache", zap.Int64("deleted_count", res.DeletedCount))
	return nil
}

func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	count, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count mongo cache: %w", err)
	}

	hits := mcs.l1Hits.Load() + mcs.mongoHits.Load()
	misses := mcs.misses.Load()

	mcs.logger.Debug("mongo cache stats",
		zap.Int("l1_size", mcs.l1Cache.Len()),
		zap.Int64("l1_hits", mcs.l1Hits.Load()),
		zap.Int64("mongo_hits", mcs.mongoHits.Load()))

	return &CacheStats{
		Backend:    "mongo",
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: count,
	}, nil
}

func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}

	count, err := mcs.collection.CountDocuments(ctx, bson.M{"raw_fingerprint": Fingerprint(key)})
	if err != nil {
		return false, fmt.Errorf("check mongo cache: %w", err)
	}
	return count > 0, nil
}

// GetTTL reports the time left before the TTL index reaps the entry.
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	if mcs.ttl <= 0 {
		return 0, nil
	}

	var entry models.AddressCache
	err := mcs.collection.FindOne(ctx, bson.M{"raw_fingerprint": Fingerprint(key)}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query mongo cache: %w", err)
	}

	remaining := mcs.ttl - time.Since(entry.CreatedAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Close is a no-op; the client belongs to the caller.
func (mcs *MongoCacheService) Close() error {
	return nil
}

// WarmUp loads the most accessed entries into the LRU.
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("warm up cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry models.AddressCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("skipping undecodable cache entry", zap.Error(err))
			continue
		}
		outcome := entry.Outcome
		mcs.l1Cache.Add(CacheKey(entry.RawAddress), &outcome)
		count++
	}

	mcs.logger.Info("cache warm up complete",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", mcs.l1Cache.Len()))
	return cursor.Err()
}

func (mcs *MongoCacheService) updateAccessStats(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		mcs.logger.Warn("update cache access stats", zap.Error(err))
	}
}
