package domain

import "time"

// Raw records are produced by the market data collaborator. Numeric fields
// the API may omit or send as null are pointers so absence is never confused
// with zero.

// RawListing is one marketplace's aggregated listing entry for an item.
type RawListing struct {
	Market   string
	MinPrice *float64
	Listings *int64
}

// RawSale is one marketplace's aggregated sales for an item on one day.
type RawSale struct {
	Market      string
	Volume      *int64
	MeanPrice   *float64
	MedianPrice *float64
}

// RawDay groups the raw sales reported for a single calendar day.
type RawDay struct {
	Day   Date
	Sales []RawSale
}

// RawListingSnapshot is one point of the aggregated listing history.
type RawListingSnapshot struct {
	Timestamp time.Time
	Listings  []RawListing
}

// RawPlayerCount is the reported concurrent player count for one day.
type RawPlayerCount struct {
	Day   Date
	Count *int64
}
