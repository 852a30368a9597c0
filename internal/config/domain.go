package config

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// FeeTable converts the fee section into a validated domain.FeeTable.
func (c *Config) FeeTable() (domain.FeeTable, error) {
	fees := make(map[domain.Market]decimal.Decimal, len(c.Fees.PerMarket))
	for m, f := range c.Fees.PerMarket {
		fees[domain.ParseMarket(m)] = decimal.NewFromFloat(f)
	}
	return domain.NewFeeTable(fees, decimal.NewFromFloat(c.Fees.Default))
}

// referencePerMarket renders domain.ReferenceFees as the per_market section.
func referencePerMarket() map[string]float64 {
	ref := domain.ReferenceFees()
	out := make(map[string]float64, len(ref.Fees))
	for m, f := range ref.Fees {
		out[string(m)] = f.InexactFloat64()
	}
	return out
}

// Items returns the watchlist as item identifiers, skipping blanks.
func (c *Config) Items() []domain.ItemID {
	items := make([]domain.ItemID, 0, len(c.Watchlist.Items))
	for _, s := range c.Watchlist.Items {
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, domain.ItemID(s))
		}
	}
	return items
}

// Targets returns the alert targets in configured order.
func (c *Config) Targets() []domain.PriceTarget {
	out := make([]domain.PriceTarget, 0, len(c.Alerts.Targets))
	for _, t := range c.Alerts.Targets {
		out = append(out, domain.PriceTarget{
			Item:  domain.ItemID(strings.TrimSpace(t.Item)),
			Price: decimal.NewFromFloat(t.Price),
		})
	}
	return out
}

// Markets returns the configured marketplace filter. Empty means all.
func (c *Config) Markets() []domain.Market {
	out := make([]domain.Market, 0, len(c.CSMarket.Markets))
	for _, m := range c.CSMarket.Markets {
		if pm := domain.ParseMarket(m); pm != "" {
			out = append(out, pm)
		}
	}
	return out
}

// Currency returns the reporting currency.
func (c *Config) Currency() domain.Currency {
	return domain.Currency(strings.ToUpper(c.CSMarket.Currency))
}
