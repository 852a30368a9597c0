package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultFeeFraction applies to marketplaces missing from a FeeTable.
var DefaultFeeFraction = decimal.RequireFromString("0.10")

// FeeTable maps a marketplace to the fraction of a sale price it keeps as
// seller fee. Fractions are in [0, 1).
type FeeTable struct {
	Fees    map[Market]decimal.Decimal
	Default decimal.Decimal
}

// NewFeeTable validates fees and def and returns a table that owns a copy of fees.
func NewFeeTable(fees map[Market]decimal.Decimal, def decimal.Decimal) (FeeTable, error) {
	if err := checkFee(def); err != nil {
		return FeeTable{}, fmt.Errorf("default: %w", err)
	}
	own := make(map[Market]decimal.Decimal, len(fees))
	for m, f := range fees {
		if err := checkFee(f); err != nil {
			return FeeTable{}, fmt.Errorf("%s: %w", m, err)
		}
		own[m] = f
	}
	return FeeTable{Fees: own, Default: def}, nil
}

func checkFee(f decimal.Decimal) error {
	if f.IsNegative() || f.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s not in [0, 1)", ErrInvalidFee, f)
	}
	return nil
}

// Fraction returns the seller fee for m and whether the default was used.
func (t FeeTable) Fraction(m Market) (decimal.Decimal, bool) {
	if f, ok := t.Fees[m]; ok {
		return f, false
	}
	return t.Default, true
}

// ReferenceFees returns the published seller fees of the supported
// marketplaces with DefaultFeeFraction as fallback.
func ReferenceFees() FeeTable {
	return FeeTable{
		Fees: map[Market]decimal.Decimal{
			MarketSteamCommunity: decimal.RequireFromString("0.15"),
			MarketSkinBaron:      decimal.RequireFromString("0.15"),
			MarketSkinport:       decimal.RequireFromString("0.08"),
			MarketCSMoney:        decimal.RequireFromString("0.06"),
			MarketWhiteMarket:    decimal.RequireFromString("0.05"),
			MarketBuffMarket:     decimal.RequireFromString("0.045"),
			MarketGamerPay:       decimal.RequireFromString("0.03"),
			MarketCSFloat:        decimal.RequireFromString("0.02"),
			MarketCSDeals:        decimal.RequireFromString("0.02"),
			MarketSkins:          decimal.Zero,
		},
		Default: DefaultFeeFraction,
	}
}
