// Package pipeline runs the recurring jobs of watch mode: the watchlist
// pass on a fixed interval and the trend sweep on a cron schedule.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/notify"
	"github.com/alanyoungcy/skinscout/internal/service"
)

// PassReport is the result of one watchlist pass.
type PassReport struct {
	StartedAt time.Time
	Elapsed   time.Duration
	Listings  []service.ItemListingReport
	Arbitrage []service.ItemArbReport
	Alerts    service.AlertReport
}

// Watcher fetches the watchlist and alert items once per pass and feeds the
// same listings to arbitrage detection and alert evaluation.
type Watcher struct {
	listings *service.ListingService
	arb      *service.ArbService
	alerts   *service.AlertService
	items    []domain.ItemID
	targets  []domain.PriceTarget
	notifier *notify.Notifier
	logger   *slog.Logger
}

// NewWatcher creates a Watcher. arb or alerts may be nil to skip that step.
func NewWatcher(
	listings *service.ListingService,
	arb *service.ArbService,
	alerts *service.AlertService,
	items []domain.ItemID,
	targets []domain.PriceTarget,
	logger *slog.Logger,
) *Watcher {
	return &Watcher{
		listings: listings,
		arb:      arb,
		alerts:   alerts,
		items:    items,
		targets:  targets,
		logger:   logger.With(slog.String("component", "watcher")),
	}
}

// WithNotifier sends a scan_error notification for passes with failed items.
func (w *Watcher) WithNotifier(n *notify.Notifier) *Watcher {
	w.notifier = n
	return w
}

// Pass runs one watchlist pass. Arbitrage covers the watchlist items only;
// alert targets for items outside the watchlist are fetched too.
func (w *Watcher) Pass(ctx context.Context) PassReport {
	rep := PassReport{StartedAt: time.Now().UTC()}

	all := append([]domain.ItemID(nil), w.items...)
	for _, t := range w.targets {
		all = append(all, t.Item)
	}
	rep.Listings = w.listings.Scan(ctx, all)
	w.reportFailures(ctx, rep.Listings)

	if w.arb != nil {
		watched := make(map[domain.ItemID]bool, len(w.items))
		for _, it := range w.items {
			watched[it] = true
		}
		var subset []service.ItemListingReport
		for _, lr := range rep.Listings {
			if watched[lr.Item] {
				subset = append(subset, lr)
			}
		}
		rep.Arbitrage = w.arb.Detect(ctx, subset)
	}
	if w.alerts != nil && len(w.targets) > 0 {
		rep.Alerts = w.alerts.Evaluate(ctx, w.targets, rep.Listings)
	}

	rep.Elapsed = time.Since(rep.StartedAt)
	w.logger.InfoContext(ctx, "watchlist pass complete",
		slog.Int("items", len(rep.Listings)),
		slog.Int("opportunities", countOpportunities(rep.Arbitrage)),
		slog.Int("alerts", len(rep.Alerts.Alerts)),
		slog.Duration("elapsed", rep.Elapsed),
	)
	return rep
}

// RunLoop runs a pass immediately and then every interval until ctx is
// cancelled. onPass, if set, receives every report.
func (w *Watcher) RunLoop(ctx context.Context, interval time.Duration, onPass func(PassReport)) error {
	if interval <= 0 {
		return fmt.Errorf("pipeline: watch interval must be > 0, got %v", interval)
	}
	run := func() {
		rep := w.Pass(ctx)
		if onPass != nil {
			onPass(rep)
		}
	}
	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher loop stopped")
			return ctx.Err()
		case <-ticker.C:
			run()
		}
	}
}

func (w *Watcher) reportFailures(ctx context.Context, reports []service.ItemListingReport) {
	if !w.notifier.Enabled(notify.EventScanError) {
		return
	}
	var lines []string
	for _, r := range reports {
		if r.Status == domain.StatusError {
			lines = append(lines, fmt.Sprintf("%s: %v", r.Item, r.Err))
		}
	}
	if len(lines) == 0 {
		return
	}
	title := fmt.Sprintf("Scan errors: %d of %d items", len(lines), len(reports))
	if err := w.notifier.Notify(ctx, notify.EventScanError, title, strings.Join(lines, "\n")); err != nil {
		w.logger.WarnContext(ctx, "scan error notification failed", slog.String("error", err.Error()))
	}
}

func countOpportunities(reports []service.ItemArbReport) int {
	n := 0
	for _, r := range reports {
		n += len(r.Opportunities)
	}
	return n
}
