package csmarket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("", "test-key")
		if c.baseURL != DefaultBaseURL {
			t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want 30s", c.httpClient.Timeout)
		}
		if c.maxRetries != 3 || c.retryBackoff != time.Second {
			t.Errorf("retries = %d/%v, want 3/1s", c.maxRetries, c.retryBackoff)
		}
	})

	t.Run("with options", func(t *testing.T) {
		hc := &http.Client{}
		c := NewClient("http://x", "", WithHTTPClient(hc), WithTimeout(5*time.Second), WithRetries(1, time.Millisecond), WithRateLimit(2))
		if c.httpClient != hc || hc.Timeout != 5*time.Second {
			t.Error("http client options not applied")
		}
		if c.maxRetries != 1 || c.retryBackoff != time.Millisecond {
			t.Errorf("retries = %d/%v", c.maxRetries, c.retryBackoff)
		}
		if c.limiter.Burst() != 2 {
			t.Errorf("burst = %d, want 2", c.limiter.Burst())
		}
	})
}

func TestLatestListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/listings/latest/aggregate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "k" {
			t.Errorf("X-API-Key = %q", got)
		}
		q := r.URL.Query()
		if q.Get("market_hash_name") != "Glove Case" || q.Get("currency") != "USD" || q.Get("markets") != "SKINPORT,CSFLOAT" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"market_hash_name":"Glove Case","listings":[
			{"market":"SKINPORT","min_price":5.25,"listings":12},
			{"market":"CSFLOAT","min_price":null,"listings":3}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", WithLogger(quietLogger()))
	got, err := c.LatestListings(context.Background(), "Glove Case", []domain.Market{domain.MarketSkinport, domain.MarketCSFloat}, "")
	if err != nil {
		t.Fatalf("LatestListings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Market != "SKINPORT" || got[0].MinPrice == nil || *got[0].MinPrice != 5.25 || *got[0].Listings != 12 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].MinPrice != nil {
		t.Errorf("null min_price decoded as %v", *got[1].MinPrice)
	}
}

func TestSalesHistoryParsesDays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") != "2024-05-01" || r.URL.Query().Get("end") != "2024-05-07" {
			t.Errorf("range query = %v", r.URL.Query())
		}
		_, _ = io.WriteString(w, `{"items":[
			{"day":"2024-05-01","sales":[{"market":"SKINPORT","volume":4,"mean_price":null,"median_price":3.1}]},
			{"day":"garbage","sales":[]}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithLogger(quietLogger()))
	start := domain.NewDate(2024, time.May, 1)
	days, err := c.SalesHistory(context.Background(), "x", nil, start, start.AddDays(6), domain.DefaultCurrency)
	if err != nil {
		t.Fatalf("SalesHistory: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("len = %d, want 2", len(days))
	}
	if !days[0].Day.Equal(start) || days[0].Sales[0].MeanPrice != nil || *days[0].Sales[0].MedianPrice != 3.1 {
		t.Errorf("days[0] = %+v", days[0])
	}
	if !days[1].Day.IsZero() {
		t.Errorf("garbage day parsed as %s", days[1].Day)
	}
}

func TestFeeTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[
			{"market":"csfloat","seller_fee":0.02},
			{"market":"SKINPORT","seller_fee":null},
			{"market":"BROKEN","seller_fee":1.5}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithLogger(quietLogger()))
	ft, err := c.FeeTable(context.Background(), domain.DefaultFeeFraction)
	if err != nil {
		t.Fatalf("FeeTable: %v", err)
	}
	if f, def := ft.Fraction(domain.MarketCSFloat); def || !f.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("CSFLOAT = %s default=%v", f, def)
	}
	for _, m := range []domain.Market{domain.MarketSkinport, "BROKEN"} {
		if _, def := ft.Fraction(m); !def {
			t.Errorf("%s should use the default fee", m)
		}
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"items":[]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithRetries(3, time.Millisecond), WithLogger(quietLogger()))
	if _, err := c.PlayerCounts(context.Background(), domain.Date{}, domain.Date{}); err != nil {
		t.Fatalf("PlayerCounts: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"invalid api key"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", WithRetries(3, time.Millisecond), WithLogger(quietLogger()))
	_, err := c.LatestListings(context.Background(), "x", nil, "")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "invalid api key" {
		t.Errorf("apiErr = %d %q", apiErr.StatusCode, apiErr.Message)
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Error("errors.Is(err, ErrUnauthorized) = false")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithRetries(1, time.Millisecond), WithLogger(quietLogger()))
	_, err := c.LatestListings(context.Background(), "x", nil, "")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestRetryWithNonPositiveBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", WithRetries(1, -time.Second), WithLogger(quietLogger()))
	if c.retryBackoff != 0 {
		t.Errorf("retryBackoff = %v, want 0", c.retryBackoff)
	}
	_, err := c.LatestListings(context.Background(), "x", nil, "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("err = %v, want 500 APIError", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestListingHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[{"timestamp":"2024-05-01T10:00:00Z","listings":[{"market":"SKINS","min_price":1,"listings":1}]}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithLogger(quietLogger()))
	snaps, err := c.ListingHistory(context.Background(), "x", nil, time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("ListingHistory: %v", err)
	}
	want := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	if len(snaps) != 1 || !snaps[0].Timestamp.Equal(want) || len(snaps[0].Listings) != 1 {
		t.Errorf("snaps = %+v", snaps)
	}
}
