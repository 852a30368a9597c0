package domain

import "github.com/shopspring/decimal"

// DailySale is one marketplace's aggregated sales for an item on one day.
type DailySale struct {
	Market      Market              `json:"market"`
	Volume      int64               `json:"volume"`
	MeanPrice   decimal.NullDecimal `json:"mean_price"`
	MedianPrice decimal.NullDecimal `json:"median_price"`
}

// Price returns the sale's representative price: the mean when present,
// otherwise the median. A present zero is a price. ok is false when neither
// is present.
func (s DailySale) Price() (decimal.Decimal, bool) {
	if s.MeanPrice.Valid {
		return s.MeanPrice.Decimal, true
	}
	if s.MedianPrice.Valid {
		return s.MedianPrice.Decimal, true
	}
	return decimal.Decimal{}, false
}

// DayBucket holds every marketplace's sales for one calendar day.
type DayBucket struct {
	Day   Date        `json:"day"`
	Sales []DailySale `json:"sales"`
}

// Volume is the units sold across all marketplaces on the bucket's day.
func (b DayBucket) Volume() int64 {
	var total int64
	for _, s := range b.Sales {
		total += s.Volume
	}
	return total
}

// PlayerCountSample is the game's concurrent player count on one day.
type PlayerCountSample struct {
	Day   Date  `json:"day"`
	Count int64 `json:"count"`
}
