package domain

import (
	"context"
	"time"
)

// MarketDataSource fetches raw market records for items. It is the only
// place dates and numbers are parsed from the wire.
type MarketDataSource interface {
	LatestListings(ctx context.Context, item ItemID, markets []Market, currency Currency) ([]RawListing, error)
	ListingHistory(ctx context.Context, item ItemID, markets []Market, start, end time.Time, currency Currency) ([]RawListingSnapshot, error)
	SalesHistory(ctx context.Context, item ItemID, markets []Market, start, end Date, currency Currency) ([]RawDay, error)
	PlayerCounts(ctx context.Context, start, end Date) ([]RawPlayerCount, error)
}
