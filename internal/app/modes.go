package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/notify"
	"github.com/alanyoungcy/skinscout/internal/pipeline"
	"github.com/alanyoungcy/skinscout/internal/server"
	"github.com/alanyoungcy/skinscout/internal/server/handler"
	"github.com/alanyoungcy/skinscout/internal/server/ws"
)

// ScanMode runs one watchlist pass and one trend sweep, writes a report and
// returns.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies, svcs *Services) error {
	a.logger.InfoContext(ctx, "starting scan mode", slog.Int("items", len(a.cfg.Items())))

	watcher := a.newWatcher(deps, svcs)
	rep := watcher.Pass(ctx)
	writePassReport(a.out, rep)

	sweeper := pipeline.NewTrendSweeper(svcs.Trends, a.cfg.Items(), a.logger)
	n := sweeper.Run(ctx)
	fmt.Fprintf(a.out, "\ntrends analyzed: %d/%d items\n", n, len(a.cfg.Items()))

	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// WatchMode repeats watchlist passes on the scan interval and runs the trend
// sweep on its schedule. The HTTP server starts when server.enabled is set.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies, svcs *Services) error {
	a.logger.InfoContext(ctx, "starting watch mode",
		slog.Duration("interval", a.cfg.Scan.Interval.Duration),
	)
	g, ctx := errgroup.WithContext(ctx)
	if err := a.startPipeline(ctx, g, deps, svcs); err != nil {
		return err
	}
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, svcs)
	}
	return g.Wait()
}

// ServerMode serves the HTTP API and WebSocket feed only.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies, svcs *Services) error {
	a.logger.InfoContext(ctx, "starting server mode", slog.Int("port", a.cfg.Server.Port))
	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps, svcs)
	return g.Wait()
}

// FullMode runs the watch pipeline and the HTTP server together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies, svcs *Services) error {
	a.logger.InfoContext(ctx, "starting full mode")
	g, ctx := errgroup.WithContext(ctx)
	if err := a.startPipeline(ctx, g, deps, svcs); err != nil {
		return err
	}
	a.startHTTPServer(ctx, g, deps, svcs)
	return g.Wait()
}

func (a *App) newWatcher(deps *Dependencies, svcs *Services) *pipeline.Watcher {
	return pipeline.NewWatcher(svcs.Listings, svcs.Arb, svcs.Alerts, a.cfg.Items(), a.cfg.Targets(), a.logger).
		WithNotifier(deps.Notifier)
}

func (a *App) startPipeline(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *Services) error {
	var (
		sweeper  *pipeline.TrendSweeper
		schedule *pipeline.Schedule
	)
	if expr := a.cfg.Trends.Schedule; expr != "" {
		sched, err := pipeline.ParseSchedule(expr)
		if err != nil {
			return fmt.Errorf("app: trends schedule: %w", err)
		}
		schedule = &sched
		sweeper = pipeline.NewTrendSweeper(svcs.Trends, a.cfg.Items(), a.logger)
	}

	orch := pipeline.NewOrchestrator(a.newWatcher(deps, svcs), sweeper, a.cfg.Scan.Interval.Duration, schedule, nil, a.logger)
	g.Go(func() error {
		return orch.Run(ctx)
	})
	return nil
}

func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *Services) {
	items, targets := a.cfg.Items(), a.cfg.Targets()

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:           a.cfg.Mode,
		StartedAt:      time.Now().UTC(),
		AllowedOrigins: a.cfg.Server.CORSOrigins,
	})
	g.Go(func() error {
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("ws hub: %w", err)
		}
		return nil
	})

	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(deps.Checks, a.logger),
		Items:     handler.NewItemHandler(svcs.Listings, svcs.Trends, a.logger),
		Watchlist: handler.NewWatchlistHandler(svcs.Listings, items, targets, a.logger),
		Arb:       handler.NewArbHandler(svcs.Arb, items, a.logger),
		Alerts:    handler.NewAlertHandler(svcs.Alerts, targets, a.logger),
		Metrics:   deps.Metrics.Handler(),
	}
	if deps.AuditStore != nil {
		handlers.Audit = handler.NewAuditHandler(deps.AuditStore, a.logger)
	}
	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateBurst:   a.cfg.Server.RateBurst,
	}, handlers, hub, a.logger)

	g.Go(func() error {
		a.logger.InfoContext(ctx, "HTTP server listening",
			slog.Int("port", a.cfg.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)))
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// writePassReport prints a human-readable summary of one pass.
func writePassReport(w io.Writer, rep pipeline.PassReport) {
	fmt.Fprintf(w, "pass at %s (%s)\n\n", rep.StartedAt.Format(time.RFC3339), rep.Elapsed.Round(time.Millisecond))

	fmt.Fprintln(w, "listings:")
	for _, lr := range rep.Listings {
		switch lr.Status {
		case domain.StatusOK:
			fmt.Fprintf(w, "  %s: lowest %s on %s, average %s over %d markets\n",
				lr.Item, lr.Summary.Lowest.MinPrice.StringFixed(2), lr.Summary.Lowest.Market,
				lr.Summary.Average.StringFixed(2), lr.Summary.MarketCount)
		case domain.StatusNoData:
			fmt.Fprintf(w, "  %s: no listings\n", lr.Item)
		default:
			fmt.Fprintf(w, "  %s: error: %v\n", lr.Item, lr.Err)
		}
		if lr.Rejected > 0 {
			fmt.Fprintf(w, "    (%d malformed records excluded)\n", lr.Rejected)
		}
	}

	fmt.Fprintln(w, "\narbitrage:")
	found := false
	for _, ar := range rep.Arbitrage {
		if len(ar.Opportunities) == 0 {
			continue
		}
		found = true
		title, msg := notify.FormatOpportunities(ar.Item, ar.Opportunities)
		fmt.Fprintf(w, "  %s\n    %s\n", title, strings.ReplaceAll(msg, "\n", "\n    "))
	}
	if !found {
		fmt.Fprintln(w, "  none")
	}

	fmt.Fprintln(w, "\nalerts:")
	if len(rep.Alerts.Alerts)+len(rep.Alerts.Suppressed) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, al := range rep.Alerts.Alerts {
		title, msg := notify.FormatAlert(al)
		fmt.Fprintf(w, "  %s: %s\n", title, msg)
	}
	for _, al := range rep.Alerts.Suppressed {
		_, msg := notify.FormatAlert(al)
		fmt.Fprintf(w, "  %s: %s (cooldown)\n", al.Item, msg)
	}
	for _, item := range rep.Alerts.Skipped {
		fmt.Fprintf(w, "  %s: skipped, no listing data\n", item)
	}
}
