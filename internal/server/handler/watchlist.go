package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/service"
)

// ListingScanner fetches many items at once.
type ListingScanner interface {
	Scan(ctx context.Context, items []domain.ItemID) []service.ItemListingReport
}

// WatchlistHandler reports current listings for the configured watchlist.
type WatchlistHandler struct {
	scanner ListingScanner
	items   []domain.ItemID
	targets []domain.PriceTarget
	logger  *slog.Logger
}

func NewWatchlistHandler(scanner ListingScanner, items []domain.ItemID, targets []domain.PriceTarget, logger *slog.Logger) *WatchlistHandler {
	return &WatchlistHandler{scanner: scanner, items: items, targets: targets, logger: logHandler(logger, "watchlist")}
}

// Watchlist scans every watchlist item. Per-item failures are reported
// inline and never fail the request.
// GET /api/watchlist
func (h *WatchlistHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	reports := h.scanner.Scan(r.Context(), h.items)
	out := make([]listingDTO, 0, len(reports))
	failed := 0
	for _, rep := range reports {
		if rep.Status == domain.StatusError {
			failed++
		}
		out = append(out, toListing(rep, rep.Listings))
	}
	if failed > 0 {
		h.logger.WarnContext(r.Context(), "handler: watchlist scan had failures",
			slog.Int("items", len(reports)),
			slog.Int("failed", failed),
		)
	}
	targets := h.targets
	if targets == nil {
		targets = []domain.PriceTarget{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":   out,
		"targets": targets,
	})
}
