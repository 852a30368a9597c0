package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArbitrageOpportunity is a buy on one marketplace and a sell on another
// whose fee-adjusted proceeds exceed the purchase price.
type ArbitrageOpportunity struct {
	ID              string          `json:"id,omitempty"`
	Item            ItemID          `json:"item"`
	BuyMarket       Market          `json:"buy_market"`
	BuyPrice        decimal.Decimal `json:"buy_price"`
	SellMarket      Market          `json:"sell_market"`
	SellPrice       decimal.Decimal `json:"sell_price"`
	SellFee         decimal.Decimal `json:"sell_fee"`
	NetSellProceeds decimal.Decimal `json:"net_sell_proceeds"`
	Profit          decimal.Decimal `json:"profit"`
	ROIPercent      decimal.Decimal `json:"roi_percent"`
	FeeDefaulted    bool            `json:"fee_defaulted"`
	DetectedAt      time.Time       `json:"detected_at,omitzero"`
}
