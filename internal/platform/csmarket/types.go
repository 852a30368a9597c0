package csmarket

// Wire types. Nullable numbers stay pointers until normalization.

type apiListing struct {
	Market   string   `json:"market"`
	MinPrice *float64 `json:"min_price"`
	Listings *int64   `json:"listings"`
}

// ListingsLatestResponse is returned by the latest aggregated listings endpoint.
type ListingsLatestResponse struct {
	MarketHashName string       `json:"market_hash_name"`
	Currency       string       `json:"currency"`
	Listings       []apiListing `json:"listings"`
}

type apiListingSnapshot struct {
	Timestamp string       `json:"timestamp"`
	Listings  []apiListing `json:"listings"`
}

// ListingsHistoryResponse is returned by the aggregated listing history endpoint.
type ListingsHistoryResponse struct {
	MarketHashName string               `json:"market_hash_name"`
	Items          []apiListingSnapshot `json:"items"`
}

type apiSale struct {
	Market      string   `json:"market"`
	Volume      *int64   `json:"volume"`
	MeanPrice   *float64 `json:"mean_price"`
	MedianPrice *float64 `json:"median_price"`
}

type apiSalesDay struct {
	Day   string    `json:"day"`
	Sales []apiSale `json:"sales"`
}

// SalesHistoryResponse is returned by the aggregated sales history endpoint.
type SalesHistoryResponse struct {
	MarketHashName string        `json:"market_hash_name"`
	Items          []apiSalesDay `json:"items"`
}

type apiPlayerCount struct {
	Day   string `json:"day"`
	Count *int64 `json:"count"`
}

// PlayerCountsResponse is returned by the player count history endpoint.
type PlayerCountsResponse struct {
	Items []apiPlayerCount `json:"items"`
}

type apiMarket struct {
	Market    string   `json:"market"`
	Name      string   `json:"name"`
	SellerFee *float64 `json:"seller_fee"`
}

// MarketsResponse is returned by the marketplace catalogue endpoint.
type MarketsResponse struct {
	Items []apiMarket `json:"items"`
}
