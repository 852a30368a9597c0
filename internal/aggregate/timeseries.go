package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Range is an inclusive span of calendar days. A zero bound is open.
type Range struct {
	Start domain.Date
	End   domain.Date
}

// Contains reports whether d falls inside r.
func (r Range) Contains(d domain.Date) bool {
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

// Days computes per-day volume and average price in chronological order.
// A day whose sales carry no price has an invalid AveragePrice but keeps its
// volume.
func Days(buckets []domain.DayBucket) []domain.DayStat {
	out := make([]domain.DayStat, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, dayStat(b))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})
	return out
}

func dayStat(b domain.DayBucket) domain.DayStat {
	st := domain.DayStat{Day: b.Day, Volume: b.Volume()}
	sum := decimal.Zero
	for _, s := range b.Sales {
		if p, ok := s.Price(); ok {
			sum = sum.Add(p)
			st.PricedSales++
		}
	}
	if st.PricedSales > 0 {
		st.AveragePrice = decimal.NewNullDecimal(sum.Div(decimal.NewFromInt(int64(st.PricedSales))))
	}
	return st
}

// TimeSeries derives trend statistics over the priced days of buckets that
// fall inside rng. ok is false when no priced day remains.
func TimeSeries(buckets []domain.DayBucket, rng Range) (stats domain.TrendStats, ok bool) {
	var priced []domain.DayStat
	for _, st := range Days(buckets) {
		if !rng.Contains(st.Day) {
			continue
		}
		stats.DaysInRange++
		stats.RangeVolume += st.Volume
		if st.AveragePrice.Valid {
			priced = append(priced, st)
		}
	}
	if len(priced) == 0 {
		return domain.TrendStats{}, false
	}

	first, last := priced[0], priced[len(priced)-1]
	stats.FirstDay = first.Day
	stats.LastDay = last.Day
	stats.MinPrice = first.AveragePrice.Decimal
	stats.MaxPrice = first.AveragePrice.Decimal

	sum := decimal.Zero
	for _, st := range priced {
		p := st.AveragePrice.Decimal
		sum = sum.Add(p)
		stats.MinPrice = decimal.Min(stats.MinPrice, p)
		stats.MaxPrice = decimal.Max(stats.MaxPrice, p)
		stats.TotalVolume += st.Volume
	}

	n := decimal.NewFromInt(int64(len(priced)))
	stats.DaysTracked = len(priced)
	stats.AvgPrice = sum.Div(n)
	stats.AvgDailyVolume = decimal.NewFromInt(stats.TotalVolume).Div(n)
	stats.PriceChange = last.AveragePrice.Decimal.Sub(first.AveragePrice.Decimal)
	if !first.AveragePrice.Decimal.IsZero() {
		stats.PriceChangePercent = decimal.NewNullDecimal(
			stats.PriceChange.Div(first.AveragePrice.Decimal).Mul(hundred),
		)
	}
	return stats, true
}
