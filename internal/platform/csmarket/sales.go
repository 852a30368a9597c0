package csmarket

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

func setDateRange(q url.Values, start, end domain.Date) {
	if !start.IsZero() {
		q.Set("start", start.String())
	}
	if !end.IsZero() {
		q.Set("end", end.String())
	}
}

// SalesHistory fetches per-day, per-marketplace sales between start and end
// inclusive.
func (c *Client) SalesHistory(ctx context.Context, item domain.ItemID, markets []domain.Market, start, end domain.Date, currency domain.Currency) ([]domain.RawDay, error) {
	q := itemQuery(item, markets, currency)
	setDateRange(q, start, end)
	var resp SalesHistoryResponse
	if err := c.get(ctx, "/v1/sales/history/aggregate", q, &resp); err != nil {
		return nil, fmt.Errorf("get sales history %q: %w", item, err)
	}
	return c.toRawDays(resp.Items), nil
}

// PlayerCounts fetches the daily player count series.
func (c *Client) PlayerCounts(ctx context.Context, start, end domain.Date) ([]domain.RawPlayerCount, error) {
	q := url.Values{}
	setDateRange(q, start, end)
	var resp PlayerCountsResponse
	if err := c.get(ctx, "/v1/players/history", q, &resp); err != nil {
		return nil, fmt.Errorf("get player counts: %w", err)
	}
	return c.toRawPlayerCounts(resp.Items), nil
}
