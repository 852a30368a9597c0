package csmarket

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// FeeTable builds a fee table from the marketplace catalogue. Marketplaces
// without a usable seller fee fall back to def.
func (c *Client) FeeTable(ctx context.Context, def decimal.Decimal) (domain.FeeTable, error) {
	var resp MarketsResponse
	if err := c.get(ctx, "/v1/markets", nil, &resp); err != nil {
		return domain.FeeTable{}, fmt.Errorf("get markets: %w", err)
	}
	fees := make(map[domain.Market]decimal.Decimal, len(resp.Items))
	for _, m := range resp.Items {
		code := domain.ParseMarket(m.Market)
		if code == "" || m.SellerFee == nil {
			continue
		}
		f := *m.SellerFee
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= 1 {
			c.logger.Warn("ignoring out of range seller fee",
				slog.String("market", string(code)),
				slog.Float64("fee", f),
			)
			continue
		}
		fees[code] = decimal.NewFromFloat(f)
	}
	return domain.NewFeeTable(fees, def)
}
