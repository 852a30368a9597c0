package arbitrage

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Detector turns candidate pairs into profitable opportunities.
type Detector struct {
	pairing Pairing
	logger  *slog.Logger
}

// NewDetector creates a detector using pairing, or CheapestBuy when nil.
// logger may be nil.
func NewDetector(pairing Pairing, logger *slog.Logger) *Detector {
	if pairing == nil {
		pairing = CheapestBuy{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Detector{
		pairing: pairing,
		logger:  logger.With(slog.String("component", "arb_detector"), slog.String("pairing", pairing.Name())),
	}
}

// Pairing returns the pairing in use.
func (d *Detector) Pairing() Pairing { return d.pairing }

// Detect returns every candidate pair whose proceeds after the sell market's
// fee exceed the buy price. The result is in pairing order and unranked.
// ID and DetectedAt are left for the caller to assign.
func (d *Detector) Detect(item domain.ItemID, listings []domain.MarketListing, fees domain.FeeTable) []domain.ArbitrageOpportunity {
	var out []domain.ArbitrageOpportunity
	for _, p := range d.pairing.Pairs(listings) {
		if p.Buy.Market == p.Sell.Market || !p.Buy.MinPrice.IsPositive() {
			continue
		}
		fee, defaulted := fees.Fraction(p.Sell.Market)
		net := p.Sell.MinPrice.Mul(one.Sub(fee))
		profit := net.Sub(p.Buy.MinPrice)
		if !profit.IsPositive() {
			continue
		}
		if defaulted {
			d.logger.Debug("sell market missing from fee table, using default",
				slog.String("market", p.Sell.Market.String()),
				slog.String("fee", fee.String()),
			)
		}
		out = append(out, domain.ArbitrageOpportunity{
			Item:            item,
			BuyMarket:       p.Buy.Market,
			BuyPrice:        p.Buy.MinPrice,
			SellMarket:      p.Sell.Market,
			SellPrice:       p.Sell.MinPrice,
			SellFee:         fee,
			NetSellProceeds: net,
			Profit:          profit,
			ROIPercent:      profit.Div(p.Buy.MinPrice).Mul(hundred),
			FeeDefaulted:    defaulted,
		})
	}
	return out
}
