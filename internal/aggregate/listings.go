// Package aggregate derives cross-market statistics from normalized records.
// Every function is pure and leaves its input untouched.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// Listings summarises one item's listings at one instant. Ties on the lowest
// price go to the first listing in input order. ok is false for empty input.
func Listings(listings []domain.MarketListing) (summary domain.ListingSummary, ok bool) {
	lowest, ok := Lowest(listings)
	if !ok {
		return domain.ListingSummary{}, false
	}
	sum := decimal.Zero
	for _, l := range listings {
		sum = sum.Add(l.MinPrice)
	}
	return domain.ListingSummary{
		Lowest:      lowest,
		Average:     sum.Div(decimal.NewFromInt(int64(len(listings)))),
		MarketCount: len(listings),
	}, true
}

// Lowest returns the first listing holding the minimal price.
func Lowest(listings []domain.MarketListing) (domain.MarketListing, bool) {
	if len(listings) == 0 {
		return domain.MarketListing{}, false
	}
	best := listings[0]
	for _, l := range listings[1:] {
		if l.MinPrice.LessThan(best.MinPrice) {
			best = l
		}
	}
	return best, true
}

// ByPrice returns a copy of listings ordered cheapest first, keeping input
// order among equal prices.
func ByPrice(listings []domain.MarketListing) []domain.MarketListing {
	out := make([]domain.MarketListing, len(listings))
	copy(out, listings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinPrice.LessThan(out[j].MinPrice)
	})
	return out
}

// SnapshotLows reduces a listing history to the cheapest listing per
// snapshot, oldest first. Snapshots without listings are skipped.
func SnapshotLows(snaps []domain.ListingSnapshot) []domain.SnapshotLow {
	out := make([]domain.SnapshotLow, 0, len(snaps))
	for _, s := range snaps {
		lowest, ok := Lowest(s.Listings)
		if !ok {
			continue
		}
		out = append(out, domain.SnapshotLow{Timestamp: s.Timestamp, Lowest: lowest, MarketCount: len(s.Listings)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
