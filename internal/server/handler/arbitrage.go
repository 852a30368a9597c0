package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/service"
)

// ArbService defines the methods that the arbitrage handler requires.
type ArbService interface {
	Scan(ctx context.Context, items []domain.ItemID) []service.ItemArbReport
	ScanTop(ctx context.Context, items []domain.ItemID, topN int) []service.ItemArbReport
	Recent(ctx context.Context, limit int) ([]domain.ArbitrageOpportunity, error)
	ByItem(ctx context.Context, item domain.ItemID, opts domain.ListOpts) ([]domain.ArbitrageOpportunity, error)
	Fees() domain.FeeTable
}

// ArbHandler serves arbitrage-related HTTP endpoints.
type ArbHandler struct {
	arb       ArbService
	watchlist []domain.ItemID
	logger    *slog.Logger
}

// NewArbHandler creates an ArbHandler. watchlist is scanned when a request
// names no items.
func NewArbHandler(arb ArbService, watchlist []domain.ItemID, logger *slog.Logger) *ArbHandler {
	return &ArbHandler{arb: arb, watchlist: watchlist, logger: logHandler(logger, "arbitrage")}
}

type arbItemDTO struct {
	outcomeDTO
	Candidates    int                           `json:"candidates"`
	Opportunities []domain.ArbitrageOpportunity `json:"opportunities"`
}

// Scan runs detection on demand.
// GET /api/arbitrage/scan?items=a,b&top=3
func (h *ArbHandler) Scan(w http.ResponseWriter, r *http.Request) {
	items := parseItems(r.URL.Query().Get("items"))
	if len(items) == 0 {
		items = h.watchlist
	}
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "no items given and watchlist is empty")
		return
	}

	var reports []service.ItemArbReport
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		reports = h.arb.ScanTop(r.Context(), items, n)
	} else {
		reports = h.arb.Scan(r.Context(), items)
	}

	out := make([]arbItemDTO, 0, len(reports))
	total := 0
	for _, rep := range reports {
		opps := rep.Opportunities
		if opps == nil {
			opps = []domain.ArbitrageOpportunity{}
		}
		total += len(opps)
		out = append(out, arbItemDTO{outcomeDTO: toOutcome(rep.ItemOutcome), Candidates: rep.Candidates, Opportunities: opps})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":          out,
		"total_detected": total,
	})
}

// listArbResponse wraps the list arbitrage opportunities response.
type listArbResponse struct {
	Opportunities []domain.ArbitrageOpportunity `json:"opportunities"`
}

// ListRecent returns the most recent arbitrage opportunities.
// GET /api/arbitrage/recent?limit=20
func (h *ArbHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	opps, err := h.arb.Recent(r.Context(), parseLimit(r, 20, 200))
	h.writeOpps(w, r, opps, err)
}

// ListByItem returns persisted opportunities for one item.
// GET /api/items/{item}/arbitrage?limit=50&offset=0
func (h *ArbHandler) ListByItem(w http.ResponseWriter, r *http.Request) {
	opps, err := h.arb.ByItem(r.Context(), pathItem(r), parseListOpts(r))
	h.writeOpps(w, r, opps, err)
}

func (h *ArbHandler) writeOpps(w http.ResponseWriter, r *http.Request, opps []domain.ArbitrageOpportunity, err error) {
	if errors.Is(err, service.ErrDisabled) {
		writeError(w, http.StatusServiceUnavailable, "opportunity store not configured")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list arb opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list arbitrage opportunities")
		return
	}
	if opps == nil {
		opps = []domain.ArbitrageOpportunity{}
	}
	writeJSON(w, http.StatusOK, listArbResponse{Opportunities: opps})
}

type feeDTO struct {
	Market   domain.Market   `json:"market"`
	Fraction decimal.Decimal `json:"fraction"`
}

// Fees returns the seller fee table used by scans.
// GET /api/arbitrage/fees
func (h *ArbHandler) Fees(w http.ResponseWriter, r *http.Request) {
	table := h.arb.Fees()
	fees := make([]feeDTO, 0, len(table.Fees))
	for m, f := range table.Fees {
		fees = append(fees, feeDTO{Market: m, Fraction: f})
	}
	sort.Slice(fees, func(i, j int) bool { return fees[i].Market < fees[j].Market })
	writeJSON(w, http.StatusOK, map[string]any{
		"fees":    fees,
		"default": table.Default,
	})
}
