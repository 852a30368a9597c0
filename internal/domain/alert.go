package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceTarget is a user's buy threshold for an item.
type PriceTarget struct {
	Item  ItemID          `json:"item"`
	Price decimal.Decimal `json:"price"`
}

// Alert records that an item's lowest listing reached its target.
type Alert struct {
	ID             string          `json:"id,omitempty"`
	Item           ItemID          `json:"item"`
	Market         Market          `json:"market"`
	TriggeredPrice decimal.Decimal `json:"triggered_price"`
	TargetPrice    decimal.Decimal `json:"target_price"`
	Savings        decimal.Decimal `json:"savings"`
	TriggeredAt    time.Time       `json:"triggered_at,omitzero"`
}
