package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/skinscout/internal/aggregate"
	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/service"
)

// ListingService is what the item endpoints need for listings.
type ListingService interface {
	Fetch(ctx context.Context, item domain.ItemID) service.ItemListingReport
	Cached(ctx context.Context, item domain.ItemID) (domain.ListingSnapshot, error)
	History(ctx context.Context, item domain.ItemID, start, end time.Time) (service.HistoryReport, error)
}

// TrendService is what the item endpoints need for price trends.
type TrendService interface {
	Analyze(ctx context.Context, item domain.ItemID, rng aggregate.Range) (domain.TrendReport, error)
	Stored(ctx context.Context, item domain.ItemID, rng aggregate.Range) (domain.TrendStats, error)
}

const (
	defaultHistoryHours = 24
	maxHistoryHours     = 24 * 30
)

// ItemHandler serves per-item listing and trend endpoints.
type ItemHandler struct {
	listings ListingService
	trends   TrendService
	logger   *slog.Logger
}

// NewItemHandler creates an ItemHandler. trends may be nil.
func NewItemHandler(listings ListingService, trends TrendService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{listings: listings, trends: trends, logger: logHandler(logger, "items")}
}

// Listings fetches current listings for one item, cheapest first.
// GET /api/items/{item}/listings
func (h *ItemHandler) Listings(w http.ResponseWriter, r *http.Request) {
	item := pathItem(r)
	if item == "" {
		writeError(w, http.StatusBadRequest, "missing item")
		return
	}
	report := h.listings.Fetch(r.Context(), item)
	if report.Status == domain.StatusError {
		h.logger.ErrorContext(r.Context(), "handler: fetch listings failed",
			slog.String("item", string(item)),
			slog.String("error", report.Err.Error()),
		)
		writeJSON(w, http.StatusBadGateway, toListing(report, nil))
		return
	}
	writeJSON(w, http.StatusOK, toListing(report, aggregate.ByPrice(report.Listings)))
}

// Cached returns the last listing snapshot stored for an item.
// GET /api/items/{item}/cached
func (h *ItemHandler) Cached(w http.ResponseWriter, r *http.Request) {
	snap, err := h.listings.Cached(r.Context(), pathItem(r))
	switch {
	case errors.Is(err, service.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, "listing cache not configured")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "no cached listings")
	case err != nil:
		h.logger.ErrorContext(r.Context(), "handler: cached listings failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to read cached listings")
	default:
		writeJSON(w, http.StatusOK, snap)
	}
}

// History returns the lowest listing at each snapshot over the last hours.
// GET /api/items/{item}/history?hours=24
func (h *ItemHandler) History(w http.ResponseWriter, r *http.Request) {
	item := pathItem(r)
	hours := defaultHistoryHours
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		hours = min(n, maxHistoryHours)
	}
	end := time.Now().UTC()
	report, err := h.listings.History(r.Context(), item, end.Add(-time.Duration(hours)*time.Hour), end)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: listing history failed",
			slog.String("item", string(item)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to fetch listing history")
		return
	}
	lows := report.Lows
	if lows == nil {
		lows = []domain.SnapshotLow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"item":     report.Item,
		"hours":    hours,
		"lows":     lows,
		"rejected": report.Rejected,
	})
}

// Trends analyzes daily sales over a date range.
// GET /api/items/{item}/trends?start=2024-05-01&end=2024-05-30
func (h *ItemHandler) Trends(w http.ResponseWriter, r *http.Request) {
	if h.trends == nil {
		writeError(w, http.StatusServiceUnavailable, "trend analysis not configured")
		return
	}
	rng, ok := parseRange(w, r)
	if !ok {
		return
	}
	item := pathItem(r)
	report, err := h.trends.Analyze(r.Context(), item, rng)
	if errors.Is(err, service.ErrInvalidRange) {
		writeError(w, http.StatusBadRequest, "end before start")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: trend analysis failed",
			slog.String("item", string(item)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to analyze trends")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// StoredTrends returns previously computed statistics without refetching.
// GET /api/items/{item}/trends/stored?start=...&end=...
func (h *ItemHandler) StoredTrends(w http.ResponseWriter, r *http.Request) {
	if h.trends == nil {
		writeError(w, http.StatusServiceUnavailable, "trend analysis not configured")
		return
	}
	rng, ok := parseRange(w, r)
	if !ok {
		return
	}
	stats, err := h.trends.Stored(r.Context(), pathItem(r), rng)
	switch {
	case errors.Is(err, service.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, "trend store not configured")
	case errors.Is(err, service.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "end before start")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "no stored trend for range")
	case err != nil:
		h.logger.ErrorContext(r.Context(), "handler: stored trend failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to read stored trend")
	default:
		writeJSON(w, http.StatusOK, stats)
	}
}

// parseRange reads optional ?start= and ?end= dates. It writes a 400 and
// returns false on a bad value.
func parseRange(w http.ResponseWriter, r *http.Request) (aggregate.Range, bool) {
	var rng aggregate.Range
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *domain.Date
	}{{"start", &rng.Start}, {"end", &rng.End}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := domain.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, p.name+" must be YYYY-MM-DD")
			return aggregate.Range{}, false
		}
		*p.dst = d
	}
	if !rng.Start.IsZero() && !rng.End.IsZero() && rng.End.Before(rng.Start) {
		writeError(w, http.StatusBadRequest, "end before start")
		return aggregate.Range{}, false
	}
	return rng, true
}
