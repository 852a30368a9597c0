package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayStat is the per-day view of a DayBucket.
type DayStat struct {
	Day          Date                `json:"day"`
	Volume       int64               `json:"volume"`
	AveragePrice decimal.NullDecimal `json:"average_price"`
	PricedSales  int                 `json:"priced_sales"`
}

// TrendStats summarises an item's priced days over a date range. Prices are
// per-day averages across marketplaces.
type TrendStats struct {
	Item               ItemID              `json:"item"`
	FirstDay           Date                `json:"first_day"`
	LastDay            Date                `json:"last_day"`
	MinPrice           decimal.Decimal     `json:"min_price"`
	MaxPrice           decimal.Decimal     `json:"max_price"`
	AvgPrice           decimal.Decimal     `json:"avg_price"`
	TotalVolume        int64               `json:"total_volume"`
	AvgDailyVolume     decimal.Decimal     `json:"avg_daily_volume"`
	PriceChange        decimal.Decimal     `json:"price_change"`
	PriceChangePercent decimal.NullDecimal `json:"price_change_percent"`
	DaysTracked        int                 `json:"days_tracked"`
	DaysInRange        int                 `json:"days_in_range"`
	RangeVolume        int64               `json:"range_volume"`
}

// CorrelationRow pairs one day's market activity with the player count.
type CorrelationRow struct {
	Day          Date                `json:"day"`
	Volume       int64               `json:"volume"`
	AveragePrice decimal.NullDecimal `json:"average_price"`
	Players      *int64              `json:"players"`
}

// SnapshotLow is the cheapest listing at one listing-history snapshot.
type SnapshotLow struct {
	Timestamp   time.Time     `json:"timestamp"`
	Lowest      MarketListing `json:"lowest"`
	MarketCount int           `json:"market_count"`
}

// Status is the outcome of processing one item.
type Status string

const (
	StatusOK     Status = "ok"
	StatusNoData Status = "no_data"
	StatusError  Status = "error"
)

// TrendReport is the full result of analysing one item over a date range.
type TrendReport struct {
	Item        ItemID           `json:"item"`
	Start       Date             `json:"start"`
	End         Date             `json:"end"`
	Status      Status           `json:"status"`
	Stats       *TrendStats      `json:"stats,omitempty"`
	Days        []DayStat        `json:"days"`
	Correlation []CorrelationRow `json:"correlation,omitempty"`
	Rejected    int              `json:"rejected"`
	GeneratedAt time.Time        `json:"generated_at"`
}
