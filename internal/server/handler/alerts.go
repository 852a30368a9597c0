package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/service"
)

// AlertService defines the methods that the alert handler requires.
type AlertService interface {
	Check(ctx context.Context, targets []domain.PriceTarget) service.AlertReport
	Recent(ctx context.Context, limit int) ([]domain.Alert, error)
}

const maxCheckBody = 1 << 20

// AlertHandler serves price alert endpoints.
type AlertHandler struct {
	alerts  AlertService
	targets []domain.PriceTarget
	logger  *slog.Logger
}

// NewAlertHandler creates an AlertHandler. targets are checked when a
// request supplies none.
func NewAlertHandler(alerts AlertService, targets []domain.PriceTarget, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, targets: targets, logger: logHandler(logger, "alerts")}
}

type checkRequest struct {
	Targets []domain.PriceTarget `json:"targets"`
}

// Check evaluates targets against current lowest listings.
// POST /api/alerts/check  {"targets":[{"item":"...","price":"100"}]}
func (h *AlertHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxCheckBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	targets := req.Targets
	if len(targets) == 0 {
		targets = h.targets
	}
	for _, t := range targets {
		if t.Item == "" || t.Price.IsNegative() {
			writeError(w, http.StatusBadRequest, "each target needs an item and a non-negative price")
			return
		}
	}

	report := h.alerts.Check(r.Context(), targets)
	outcomes := make([]outcomeDTO, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		outcomes = append(outcomes, toOutcome(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts":     nonNilAlerts(report.Alerts),
		"suppressed": nonNilAlerts(report.Suppressed),
		"skipped":    nonNilItems(report.Skipped),
		"outcomes":   outcomes,
	})
}

// ListRecent returns the most recently triggered alerts.
// GET /api/alerts/recent?limit=20
func (h *AlertHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.Recent(r.Context(), parseLimit(r, 20, 200))
	if errors.Is(err, service.ErrDisabled) {
		writeError(w, http.StatusServiceUnavailable, "alert store not configured")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list alerts failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": nonNilAlerts(alerts)})
}

func nonNilAlerts(a []domain.Alert) []domain.Alert {
	if a == nil {
		return []domain.Alert{}
	}
	return a
}

func nonNilItems(a []domain.ItemID) []domain.ItemID {
	if a == nil {
		return []domain.ItemID{}
	}
	return a
}
