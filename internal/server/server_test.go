package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/server/handler"
	"github.com/alanyoungcy/skinscout/internal/service"
)

type nopArb struct{}

func (nopArb) Scan(context.Context, []domain.ItemID) []service.ItemArbReport { return nil }

func (nopArb) ScanTop(context.Context, []domain.ItemID, int) []service.ItemArbReport { return nil }

func (nopArb) Recent(context.Context, int) ([]domain.ArbitrageOpportunity, error) { return nil, nil }

func (nopArb) ByItem(context.Context, domain.ItemID, domain.ListOpts) ([]domain.ArbitrageOpportunity, error) {
	return nil, nil
}

func (nopArb) Fees() domain.FeeTable { return domain.ReferenceFees() }

type nopListings struct{}

func (nopListings) Fetch(_ context.Context, item domain.ItemID) service.ItemListingReport {
	return service.ItemListingReport{ItemOutcome: service.ItemOutcome{Item: item, Status: domain.StatusNoData}}
}

func (nopListings) Cached(context.Context, domain.ItemID) (domain.ListingSnapshot, error) {
	return domain.ListingSnapshot{}, domain.ErrNotFound
}

func (nopListings) History(_ context.Context, item domain.ItemID, _, _ time.Time) (service.HistoryReport, error) {
	return service.HistoryReport{Item: item}, nil
}

func newTestServer(apiKey string) *Server {
	logger := slog.New(slog.DiscardHandler)
	handlers := Handlers{
		Health: handler.NewHealthHandler(nil, logger),
		Items:  handler.NewItemHandler(nopListings{}, nil, logger),
		Arb:    handler.NewArbHandler(nopArb{}, nil, logger),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	}
	return NewServer(Config{APIKey: apiKey, RateLimit: 100, RateBurst: 100}, handlers, nil, logger)
}

func TestRoutes(t *testing.T) {
	h := newTestServer("").Handler()
	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/items/AK-47%20%7C%20Redline/listings", http.StatusOK},
		{http.MethodGet, "/api/items/x/cached", http.StatusNotFound},
		{http.MethodGet, "/api/arbitrage/fees", http.StatusOK},
		{http.MethodGet, "/api/arbitrage/recent", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/api/arbitrage/fees", http.StatusMethodNotAllowed},
		// Alerts, watchlist and audit handlers are not configured.
		{http.MethodPost, "/api/alerts/check", http.StatusNotFound},
		{http.MethodGet, "/api/audit", http.StatusNotFound},
		{http.MethodGet, "/ws", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.want {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
	}
}

func TestAuthOpenPaths(t *testing.T) {
	h := newTestServer("secret").Handler()
	for path, want := range map[string]int{
		"/api/health":          http.StatusOK,
		"/metrics":             http.StatusOK,
		"/api/arbitrage/fees":  http.StatusUnauthorized,
		"/api/items/x/history": http.StatusUnauthorized,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("%s = %d, want %d", path, rec.Code, want)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/arbitrage/fees", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authorized request = %d", rec.Code)
	}
}
