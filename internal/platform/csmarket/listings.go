package csmarket

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

func itemQuery(item domain.ItemID, markets []domain.Market, currency domain.Currency) url.Values {
	q := url.Values{}
	q.Set("market_hash_name", string(item))
	if len(markets) > 0 {
		names := make([]string, len(markets))
		for i, m := range markets {
			names[i] = string(m)
		}
		q.Set("markets", strings.Join(names, ","))
	}
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	q.Set("currency", string(currency))
	return q
}

// LatestListings fetches the current lowest ask per marketplace. An empty
// markets slice asks for every marketplace.
func (c *Client) LatestListings(ctx context.Context, item domain.ItemID, markets []domain.Market, currency domain.Currency) ([]domain.RawListing, error) {
	var resp ListingsLatestResponse
	if err := c.get(ctx, "/v1/listings/latest/aggregate", itemQuery(item, markets, currency), &resp); err != nil {
		return nil, fmt.Errorf("get latest listings %q: %w", item, err)
	}
	return toRawListings(resp.Listings), nil
}

// ListingHistory fetches aggregated listing snapshots between start and end.
func (c *Client) ListingHistory(ctx context.Context, item domain.ItemID, markets []domain.Market, start, end time.Time, currency domain.Currency) ([]domain.RawListingSnapshot, error) {
	q := itemQuery(item, markets, currency)
	if !start.IsZero() {
		q.Set("start", start.UTC().Format(time.RFC3339))
	}
	if !end.IsZero() {
		q.Set("end", end.UTC().Format(time.RFC3339))
	}
	var resp ListingsHistoryResponse
	if err := c.get(ctx, "/v1/listings/history/aggregate", q, &resp); err != nil {
		return nil, fmt.Errorf("get listing history %q: %w", item, err)
	}
	return c.toRawSnapshots(resp.Items), nil
}
