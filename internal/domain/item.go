package domain

import "strings"

// ItemID is the market hash name that identifies a skin across every
// marketplace, e.g. "AK-47 | Redline (Field-Tested)".
type ItemID string

func (id ItemID) String() string { return string(id) }

// Valid reports whether the identifier carries a usable name.
func (id ItemID) Valid() bool { return strings.TrimSpace(string(id)) != "" }

// Market identifies a marketplace. Values are the upper-case codes used by
// the market data API.
type Market string

const (
	MarketSteamCommunity Market = "STEAMCOMMUNITY"
	MarketSkinBaron      Market = "SKINBARON"
	MarketSkinport       Market = "SKINPORT"
	MarketCSMoney        Market = "CSMONEY"
	MarketWhiteMarket    Market = "WHITEMARKET"
	MarketBuffMarket     Market = "BUFFMARKET"
	MarketGamerPay       Market = "GAMERPAYGG"
	MarketCSFloat        Market = "CSFLOAT"
	MarketCSDeals        Market = "CSDEALS"
	MarketSkins          Market = "SKINS"
)

func (m Market) String() string { return string(m) }

// ParseMarket canonicalises a marketplace code.
func ParseMarket(s string) Market {
	return Market(strings.ToUpper(strings.TrimSpace(s)))
}

// Currency is the ISO code every price in one query is expressed in.
type Currency string

const DefaultCurrency Currency = "USD"
