// Package arbitrage finds fee-adjusted buy/sell spreads between marketplaces
// for a single item. Which buy/sell pairs are examined is decided by a
// pluggable Pairing; profit rules live in the Detector.
package arbitrage

import "github.com/alanyoungcy/skinscout/internal/domain"

// Pair is a candidate trade: buy on Buy's market, sell on Sell's market.
type Pair struct {
	Buy  domain.MarketListing
	Sell domain.MarketListing
}

// Pairing selects the candidate pairs the Detector evaluates.
type Pairing interface {
	Name() string
	Pairs(listings []domain.MarketListing) []Pair
}

const (
	CheapestBuyName = "cheapest_buy"
	PairwiseName    = "pairwise"
)

// CheapestBuy considers only the single cheapest listing as the buy side and
// every other listing as a sell side. Ties on price go to the first listing
// in input order.
type CheapestBuy struct{}

func (CheapestBuy) Name() string { return CheapestBuyName }

func (CheapestBuy) Pairs(listings []domain.MarketListing) []Pair {
	if len(listings) < 2 {
		return nil
	}
	buy := 0
	for i := 1; i < len(listings); i++ {
		if listings[i].MinPrice.LessThan(listings[buy].MinPrice) {
			buy = i
		}
	}
	pairs := make([]Pair, 0, len(listings)-1)
	for i, l := range listings {
		if i == buy {
			continue
		}
		pairs = append(pairs, Pair{Buy: listings[buy], Sell: l})
	}
	return pairs
}

// Pairwise examines every ordered pair of listings whose sell side is priced
// above the buy side. Cost grows with the square of the market count.
type Pairwise struct{}

func (Pairwise) Name() string { return PairwiseName }

func (Pairwise) Pairs(listings []domain.MarketListing) []Pair {
	if len(listings) < 2 {
		return nil
	}
	var pairs []Pair
	for i, buy := range listings {
		for j, sell := range listings {
			if i == j || !sell.MinPrice.GreaterThan(buy.MinPrice) {
				continue
			}
			pairs = append(pairs, Pair{Buy: buy, Sell: sell})
		}
	}
	return pairs
}
