package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// ListingCache implements domain.ListingCache. Each item's latest snapshot is
// a JSON string at "skinscout:listings:{item}" expiring after ttl.
type ListingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ domain.ListingCache = (*ListingCache)(nil)

// NewListingCache creates a ListingCache. ttl <= 0 keeps entries forever.
func NewListingCache(c *Client, ttl time.Duration) *ListingCache {
	return &ListingCache{rdb: c.Underlying(), ttl: ttl}
}

func listingKey(item domain.ItemID) string {
	return keyPrefix + "listings:" + string(item)
}

// Set stores snap as the item's latest listings.
func (lc *ListingCache) Set(ctx context.Context, item domain.ItemID, snap domain.ListingSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal listings %q: %w", item, err)
	}
	if err := lc.rdb.Set(ctx, listingKey(item), data, lc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set listings %q: %w", item, err)
	}
	return nil
}

// Get returns the cached snapshot or domain.ErrNotFound.
func (lc *ListingCache) Get(ctx context.Context, item domain.ItemID) (domain.ListingSnapshot, error) {
	data, err := lc.rdb.Get(ctx, listingKey(item)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ListingSnapshot{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ListingSnapshot{}, fmt.Errorf("redis: get listings %q: %w", item, err)
	}
	var snap domain.ListingSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.ListingSnapshot{}, fmt.Errorf("redis: decode listings %q: %w", item, err)
	}
	return snap, nil
}
