package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/skinscout/internal/alert"
	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/metrics"
	"github.com/alanyoungcy/skinscout/internal/notify"
)

// AlertConfig controls re-notification.
type AlertConfig struct {
	// Cooldown suppresses a repeat of the same item and target for this
	// long. Zero disables suppression.
	Cooldown time.Duration
}

// AlertReport is the result of one alert check.
type AlertReport struct {
	// Alerts are new triggers, in target order.
	Alerts []domain.Alert
	// Suppressed triggered but are still inside their cooldown.
	Suppressed []domain.Alert
	// Skipped items had no listing data.
	Skipped  []domain.ItemID
	Outcomes []ItemOutcome
}

// AlertService checks price targets against the lowest current listings.
type AlertService struct {
	listings *ListingService
	alerts   domain.AlertStore
	locks    domain.LockManager
	bus      domain.SignalBus
	audit    domain.AuditStore
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	cfg      AlertConfig
	logger   *slog.Logger
	stamps
}

// NewAlertService creates an AlertService. All collaborators except
// listings may be nil.
func NewAlertService(
	listings *ListingService,
	alerts domain.AlertStore,
	locks domain.LockManager,
	bus domain.SignalBus,
	audit domain.AuditStore,
	notifier *notify.Notifier,
	m *metrics.Metrics,
	cfg AlertConfig,
	logger *slog.Logger,
) *AlertService {
	return &AlertService{
		listings: listings,
		alerts:   alerts,
		locks:    locks,
		bus:      bus,
		audit:    audit,
		notifier: notifier,
		metrics:  m,
		cfg:      cfg,
		logger:   componentLogger(logger, "alert_service"),
		stamps:   defaultStamps(),
	}
}

// Check fetches the target items and evaluates the targets.
func (s *AlertService) Check(ctx context.Context, targets []domain.PriceTarget) AlertReport {
	items := make([]domain.ItemID, len(targets))
	for i, t := range targets {
		items[i] = t.Item
	}
	return s.Evaluate(ctx, targets, s.listings.Scan(ctx, items))
}

// Evaluate checks targets against listing reports that were already fetched.
func (s *AlertService) Evaluate(ctx context.Context, targets []domain.PriceTarget, listings []ItemListingReport) AlertReport {
	start := time.Now()
	defer s.metrics.ObserveScan(metrics.OpAlerts, start)

	lowest := make(map[domain.ItemID]domain.MarketListing, len(listings))
	rep := AlertReport{Outcomes: make([]ItemOutcome, 0, len(listings))}
	for _, lr := range listings {
		rep.Outcomes = append(rep.Outcomes, lr.ItemOutcome)
		if lr.Status == domain.StatusOK {
			lowest[lr.Item] = lr.Summary.Lowest
		}
	}

	eval := alert.Evaluate(targets, lowest)
	rep.Skipped = eval.Skipped
	at := s.now()
	for _, a := range eval.Alerts {
		a.ID = s.newID()
		a.TriggeredAt = at
		if s.coolingDown(ctx, a) {
			rep.Suppressed = append(rep.Suppressed, a)
			continue
		}
		rep.Alerts = append(rep.Alerts, a)
		s.record(ctx, a)
	}
	s.metrics.AlertsTriggered(len(rep.Alerts))

	s.logger.InfoContext(ctx, "alert_service: check complete",
		slog.Int("targets", len(targets)),
		slog.Int("alerts", len(rep.Alerts)),
		slog.Int("suppressed", len(rep.Suppressed)),
		slog.Int("skipped", len(rep.Skipped)),
	)
	return rep
}

// coolingDown takes the cooldown lock for the alert. The lock is left to
// expire. Lock errors other than ErrLockHeld let the alert through.
func (s *AlertService) coolingDown(ctx context.Context, a domain.Alert) bool {
	if s.locks == nil || s.cfg.Cooldown <= 0 {
		return false
	}
	_, err := s.locks.Acquire(ctx, cooldownKey(a), s.cfg.Cooldown)
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrLockHeld):
		return true
	default:
		s.logger.WarnContext(ctx, "alert_service: cooldown lock failed",
			slog.String("item", string(a.Item)),
			slog.String("error", err.Error()),
		)
		return false
	}
}

func cooldownKey(a domain.Alert) string {
	return "alert:" + string(a.Item) + ":" + a.TargetPrice.String()
}

func (s *AlertService) record(ctx context.Context, a domain.Alert) {
	attrs := []any{slog.String("alert_id", a.ID), slog.String("item", string(a.Item))}

	if s.alerts != nil {
		if err := s.alerts.Insert(ctx, a); err != nil {
			s.logger.WarnContext(ctx, "alert_service: insert failed", append(attrs, slog.String("error", err.Error()))...)
		}
	}
	if s.bus != nil {
		payload, _ := json.Marshal(a)
		if err := s.bus.Publish(ctx, domain.ChannelAlerts, payload); err != nil {
			s.logger.WarnContext(ctx, "alert_service: publish failed", append(attrs, slog.String("error", err.Error()))...)
		}
	}
	if s.audit != nil {
		if err := s.audit.Log(ctx, domain.AuditAlertTriggered, map[string]any{
			"alert_id": a.ID,
			"item":     string(a.Item),
			"market":   string(a.Market),
			"price":    a.TriggeredPrice.String(),
			"target":   a.TargetPrice.String(),
		}); err != nil {
			s.logger.WarnContext(ctx, "alert_service: audit log failed", append(attrs, slog.String("error", err.Error()))...)
		}
	}
	title, msg := notify.FormatAlert(a)
	if err := s.notifier.Notify(ctx, notify.EventPriceAlert, title, msg); err != nil {
		s.logger.WarnContext(ctx, "alert_service: notify failed", append(attrs, slog.String("error", err.Error()))...)
	}
	s.logger.InfoContext(ctx, "alert_service: alert triggered",
		append(attrs,
			slog.String("market", string(a.Market)),
			slog.String("price", a.TriggeredPrice.String()),
			slog.String("target", a.TargetPrice.String()),
		)...,
	)
}

// Recent returns the last persisted alerts.
func (s *AlertService) Recent(ctx context.Context, limit int) ([]domain.Alert, error) {
	if s.alerts == nil {
		return nil, ErrDisabled
	}
	alerts, err := s.alerts.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("alert_service: list recent: %w", err)
	}
	return alerts, nil
}
