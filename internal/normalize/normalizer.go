// Package normalize validates raw market records and shapes them into the
// canonical domain entities. A bad record never takes its siblings with it.
package normalize

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// Policy decides whether excluded records are surfaced as an error.
type Policy int

const (
	// PolicyReject excludes malformed records and reports them through Err.
	PolicyReject Policy = iota
	// PolicyDrop excludes malformed records silently. They are still listed
	// in Rejected so callers can count them.
	PolicyDrop
)

// ParsePolicy maps a configuration value to a Policy. Unknown values reject.
func ParsePolicy(s string) Policy {
	if s == "drop" {
		return PolicyDrop
	}
	return PolicyReject
}

func (p Policy) String() string {
	if p == PolicyDrop {
		return "drop"
	}
	return "reject"
}

// Normalizer is stateless apart from its policy and safe for concurrent use.
type Normalizer struct {
	policy Policy
}

func New(policy Policy) *Normalizer {
	return &Normalizer{policy: policy}
}

func (n *Normalizer) Policy() Policy { return n.policy }

// report is embedded in every batch result.
type report struct {
	policy   Policy
	Rejected []*domain.MalformedRecordError
}

// Err joins the rejected records under PolicyReject and is nil otherwise.
func (r report) Err() error {
	if r.policy == PolicyDrop || len(r.Rejected) == 0 {
		return nil
	}
	errs := make([]error, len(r.Rejected))
	for i, e := range r.Rejected {
		errs[i] = e
	}
	return errors.Join(errs...)
}

func (r *report) reject(e *domain.MalformedRecordError) {
	r.Rejected = append(r.Rejected, e)
}

// ListingBatch is the result of normalizing one item's raw listings.
type ListingBatch struct {
	report
	Listings []domain.MarketListing
}

// Listings validates raw listings for item. Order is preserved. A market may
// appear once; later duplicates are rejected.
func (n *Normalizer) Listings(item domain.ItemID, raws []domain.RawListing) ListingBatch {
	out := ListingBatch{report: report{policy: n.policy}}
	seen := make(map[domain.Market]bool, len(raws))
	for i, raw := range raws {
		l, reason := listing(raw)
		if reason == "" && seen[l.Market] {
			reason = "duplicate market in snapshot"
		}
		if reason != "" {
			out.reject(&domain.MalformedRecordError{
				Kind: domain.KindListing, Item: item, Market: domain.ParseMarket(raw.Market), Index: i, Reason: reason,
			})
			continue
		}
		seen[l.Market] = true
		out.Listings = append(out.Listings, l)
	}
	return out
}

func listing(raw domain.RawListing) (domain.MarketListing, string) {
	m := domain.ParseMarket(raw.Market)
	if m == "" {
		return domain.MarketListing{}, "missing market"
	}
	if raw.MinPrice == nil {
		return domain.MarketListing{}, "missing min price"
	}
	price, reason := amount(*raw.MinPrice, "min price")
	if reason != "" {
		return domain.MarketListing{}, reason
	}
	var count int64
	if raw.Listings != nil {
		if *raw.Listings < 0 {
			return domain.MarketListing{}, "negative listing count"
		}
		count = *raw.Listings
	}
	return domain.MarketListing{Market: m, MinPrice: price, ListingCount: count}, ""
}

// SaleBatch is the result of normalizing one day's raw sales.
type SaleBatch struct {
	report
	Sales []domain.DailySale
}

// Sales validates raw per-market sales for item.
func (n *Normalizer) Sales(item domain.ItemID, raws []domain.RawSale) SaleBatch {
	out := SaleBatch{report: report{policy: n.policy}}
	n.sales(item, domain.Date{}, raws, &out.report, &out.Sales)
	return out
}

func (n *Normalizer) sales(item domain.ItemID, day domain.Date, raws []domain.RawSale, r *report, dst *[]domain.DailySale) {
	for i, raw := range raws {
		s, reason := sale(raw)
		if reason != "" {
			r.reject(&domain.MalformedRecordError{
				Kind: domain.KindSale, Item: item, Market: domain.ParseMarket(raw.Market), Day: day, Index: i, Reason: reason,
			})
			continue
		}
		*dst = append(*dst, s)
	}
}

func sale(raw domain.RawSale) (domain.DailySale, string) {
	m := domain.ParseMarket(raw.Market)
	if m == "" {
		return domain.DailySale{}, "missing market"
	}
	s := domain.DailySale{Market: m}
	if raw.Volume != nil {
		if *raw.Volume < 0 {
			return domain.DailySale{}, "negative volume"
		}
		s.Volume = *raw.Volume
	}
	var reason string
	if s.MeanPrice, reason = optionalAmount(raw.MeanPrice, "mean price"); reason != "" {
		return domain.DailySale{}, reason
	}
	if s.MedianPrice, reason = optionalAmount(raw.MedianPrice, "median price"); reason != "" {
		return domain.DailySale{}, reason
	}
	return s, ""
}

// DayBatch is the result of normalizing a sales history.
type DayBatch struct {
	report
	Days []domain.DayBucket
}

// Days normalizes every day of a sales history. A malformed sale drops only
// that sale; an undated or repeated day drops the whole day.
func (n *Normalizer) Days(item domain.ItemID, raws []domain.RawDay) DayBatch {
	out := DayBatch{report: report{policy: n.policy}}
	seen := make(map[domain.Date]bool, len(raws))
	for i, raw := range raws {
		reason := ""
		switch {
		case raw.Day.IsZero():
			reason = "missing day"
		case seen[raw.Day]:
			reason = "duplicate day"
		}
		if reason != "" {
			out.reject(&domain.MalformedRecordError{Kind: domain.KindDay, Item: item, Day: raw.Day, Index: i, Reason: reason})
			continue
		}
		seen[raw.Day] = true
		bucket := domain.DayBucket{Day: raw.Day}
		n.sales(item, raw.Day, raw.Sales, &out.report, &bucket.Sales)
		out.Days = append(out.Days, bucket)
	}
	return out
}

// SnapshotBatch is the result of normalizing a listing history.
type SnapshotBatch struct {
	report
	Snapshots []domain.ListingSnapshot
}

// Snapshots normalizes each listing-history point with the Listings rules.
func (n *Normalizer) Snapshots(item domain.ItemID, raws []domain.RawListingSnapshot) SnapshotBatch {
	out := SnapshotBatch{report: report{policy: n.policy}}
	for i, raw := range raws {
		if raw.Timestamp.IsZero() {
			out.reject(&domain.MalformedRecordError{Kind: domain.KindSnapshot, Item: item, Index: i, Reason: "missing timestamp"})
			continue
		}
		lb := n.Listings(item, raw.Listings)
		out.Rejected = append(out.Rejected, lb.Rejected...)
		out.Snapshots = append(out.Snapshots, domain.ListingSnapshot{Timestamp: raw.Timestamp, Listings: lb.Listings})
	}
	return out
}

// PlayerCountBatch is the result of normalizing a player count series.
type PlayerCountBatch struct {
	report
	Samples []domain.PlayerCountSample
}

// PlayerCounts drops samples without a day or with a missing or negative count.
func (n *Normalizer) PlayerCounts(raws []domain.RawPlayerCount) PlayerCountBatch {
	out := PlayerCountBatch{report: report{policy: n.policy}}
	for i, raw := range raws {
		reason := ""
		switch {
		case raw.Day.IsZero():
			reason = "missing day"
		case raw.Count == nil:
			reason = "missing count"
		case *raw.Count < 0:
			reason = "negative count"
		}
		if reason != "" {
			out.reject(&domain.MalformedRecordError{Kind: domain.KindPlayerCount, Day: raw.Day, Index: i, Reason: reason})
			continue
		}
		out.Samples = append(out.Samples, domain.PlayerCountSample{Day: raw.Day, Count: *raw.Count})
	}
	return out
}

// amount converts a wire price. NaN and infinities are rejected before
// conversion since decimal.NewFromFloat panics on them.
func amount(f float64, field string) (decimal.Decimal, string) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, "non-finite " + field
	}
	if f < 0 {
		return decimal.Decimal{}, "negative " + field
	}
	return decimal.NewFromFloat(f), ""
}

func optionalAmount(f *float64, field string) (decimal.NullDecimal, string) {
	if f == nil {
		return decimal.NullDecimal{}, ""
	}
	d, reason := amount(*f, field)
	if reason != "" {
		return decimal.NullDecimal{}, reason
	}
	return decimal.NewNullDecimal(d), ""
}
