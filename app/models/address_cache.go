package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddressCache is the persisted form of a cached parse.
type AddressCache struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RawFingerprint string             `bson:"raw_fingerprint" json:"raw_fingerprint"`
	RawAddress     string             `bson:"raw_address" json:"raw_address"`
	Outcome        ParseOutcome       `bson:"outcome" json:"outcome"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed   time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount    int                `bson:"access_count" json:"access_count"`
}

// NewAddressCache wraps an outcome for storage.
func NewAddressCache(fingerprint string, outcome ParseOutcome) *AddressCache {
	now := time.Now()
	return &AddressCache{
		RawFingerprint: fingerprint,
		RawAddress:     outcome.Raw,
		Outcome:        outcome,
		CreatedAt:      now,
		LastAccessed:   now,
		AccessCount:    1,
	}
}

// UpdateAccess bumps the access bookkeeping.
func (ac *AddressCache) UpdateAccess() {
	ac.LastAccessed = time.Now()
	ac.AccessCount++
}

// IsExpired reports whether the entry is older than ttl. A zero ttl never
// expires.
func (ac *AddressCache) IsExpired(ttl time.Duration) bool {
	return ttl > 0 && time.Since(ac.CreatedAt) > ttl
}
