package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/service"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseLimit reads ?limit= with a default and an upper bound.
func parseLimit(r *http.Request, def, maxLimit int) int {
	limit := def
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return min(limit, maxLimit)
}

// parseListOpts extracts standard pagination parameters from the query string.
// Defaults: limit=50 (max 500), offset=0.
func parseListOpts(r *http.Request) domain.ListOpts {
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return domain.ListOpts{
		Limit:  parseLimit(r, 50, 500),
		Offset: offset,
	}
}

// parseItems splits a comma-separated ?items= value into unique non-empty ids.
func parseItems(raw string) []domain.ItemID {
	if raw == "" {
		return nil
	}
	var out []domain.ItemID
	seen := make(map[domain.ItemID]bool)
	for _, part := range strings.Split(raw, ",") {
		id := domain.ItemID(strings.TrimSpace(part))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// pathItem extracts the {item} path parameter. Go's mux unescapes it, so
// names such as "AK-47 | Redline (Field-Tested)" arrive intact.
func pathItem(r *http.Request) domain.ItemID {
	return domain.ItemID(strings.TrimSpace(r.PathValue("item")))
}

// logHandler is a convenience to attach slog fields in handler code.
func logHandler(logger *slog.Logger, handler string) *slog.Logger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return logger.With(slog.String("handler", handler))
}

// outcomeDTO is the JSON form of service.ItemOutcome.
type outcomeDTO struct {
	Item      domain.ItemID `json:"item"`
	Status    domain.Status `json:"status"`
	Error     string        `json:"error,omitempty"`
	Rejected  int           `json:"rejected,omitempty"`
	Malformed string        `json:"malformed,omitempty"`
}

func toOutcome(o service.ItemOutcome) outcomeDTO {
	dto := outcomeDTO{Item: o.Item, Status: o.Status, Rejected: o.Rejected}
	if o.Err != nil {
		dto.Error = o.Err.Error()
	}
	if o.Malformed != nil {
		dto.Malformed = o.Malformed.Error()
	}
	return dto
}

type listingDTO struct {
	outcomeDTO
	Summary   *domain.ListingSummary `json:"summary,omitempty"`
	Listings  []domain.MarketListing `json:"listings"`
	FetchedAt time.Time              `json:"fetched_at,omitzero"`
}

func toListing(r service.ItemListingReport, listings []domain.MarketListing) listingDTO {
	dto := listingDTO{outcomeDTO: toOutcome(r.ItemOutcome), Listings: listings, FetchedAt: r.FetchedAt}
	if r.Status == domain.StatusOK {
		summary := r.Summary
		dto.Summary = &summary
	}
	if dto.Listings == nil {
		dto.Listings = []domain.MarketListing{}
	}
	return dto
}
