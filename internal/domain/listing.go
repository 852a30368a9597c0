package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketListing is the lowest current ask for an item on one marketplace.
type MarketListing struct {
	Market       Market          `json:"market"`
	MinPrice     decimal.Decimal `json:"min_price"`
	ListingCount int64           `json:"listing_count"`
}

// ListingSnapshot is the set of listings observed at one point in time.
type ListingSnapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	Listings  []MarketListing `json:"listings"`
}

// ListingSummary is the cross-market view of an item's current listings.
type ListingSummary struct {
	Item        ItemID          `json:"item"`
	Lowest      MarketListing   `json:"lowest"`
	Average     decimal.Decimal `json:"average"`
	MarketCount int             `json:"market_count"`
}
