package csmarket

import (
	"log/slog"
	"time"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

func toRawListings(in []apiListing) []domain.RawListing {
	out := make([]domain.RawListing, len(in))
	for i, l := range in {
		out[i] = domain.RawListing{Market: l.Market, MinPrice: l.MinPrice, Listings: l.Listings}
	}
	return out
}

func toRawSales(in []apiSale) []domain.RawSale {
	out := make([]domain.RawSale, len(in))
	for i, s := range in {
		out[i] = domain.RawSale{Market: s.Market, Volume: s.Volume, MeanPrice: s.MeanPrice, MedianPrice: s.MedianPrice}
	}
	return out
}

// parseDay leaves the zero Date on failure so the normalizer rejects the
// record instead of the whole response failing.
func (c *Client) parseDay(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		c.logger.Warn("unparseable day in response", slog.String("day", s))
		return domain.Date{}
	}
	return d
}

func (c *Client) toRawDays(in []apiSalesDay) []domain.RawDay {
	out := make([]domain.RawDay, len(in))
	for i, d := range in {
		out[i] = domain.RawDay{Day: c.parseDay(d.Day), Sales: toRawSales(d.Sales)}
	}
	return out
}

func (c *Client) toRawSnapshots(in []apiListingSnapshot) []domain.RawListingSnapshot {
	out := make([]domain.RawListingSnapshot, len(in))
	for i, s := range in {
		ts, err := time.Parse(time.RFC3339Nano, s.Timestamp)
		if err != nil {
			c.logger.Warn("unparseable snapshot timestamp", slog.String("timestamp", s.Timestamp))
		}
		out[i] = domain.RawListingSnapshot{Timestamp: ts.UTC(), Listings: toRawListings(s.Listings)}
	}
	return out
}

func (c *Client) toRawPlayerCounts(in []apiPlayerCount) []domain.RawPlayerCount {
	out := make([]domain.RawPlayerCount, len(in))
	for i, p := range in {
		out[i] = domain.RawPlayerCount{Day: c.parseDay(p.Day), Count: p.Count}
	}
	return out
}
