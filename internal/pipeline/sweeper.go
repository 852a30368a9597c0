package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/service"
)

// TrendSweeper analyzes every watchlist item over the default lookback and
// lets the trend service persist and archive the reports.
type TrendSweeper struct {
	trends *service.TrendService
	items  []domain.ItemID
	logger *slog.Logger
}

// NewTrendSweeper creates a TrendSweeper.
func NewTrendSweeper(trends *service.TrendService, items []domain.ItemID, logger *slog.Logger) *TrendSweeper {
	return &TrendSweeper{
		trends: trends,
		items:  items,
		logger: logger.With(slog.String("component", "trend_sweeper")),
	}
}

// Run analyzes every item sequentially. It returns the number of items that
// produced statistics; per-item failures are logged.
func (s *TrendSweeper) Run(ctx context.Context) int {
	rng := s.trends.DefaultRange()
	ok := 0
	for _, item := range s.items {
		if ctx.Err() != nil {
			break
		}
		rep, err := s.trends.Analyze(ctx, item, rng)
		if err != nil {
			s.logger.WarnContext(ctx, "trend sweep item failed",
				slog.String("item", string(item)),
				slog.String("error", err.Error()),
			)
			continue
		}
		if rep.Status == domain.StatusOK {
			ok++
		}
	}
	s.logger.InfoContext(ctx, "trend sweep complete",
		slog.Int("items", len(s.items)),
		slog.Int("with_stats", ok),
		slog.String("start", rng.Start.String()),
		slog.String("end", rng.End.String()),
	)
	return ok
}

// RunCron runs the sweep whenever sched fires until ctx is cancelled.
func (s *TrendSweeper) RunCron(ctx context.Context, sched Schedule) error {
	for {
		next, err := sched.Next(time.Now().UTC())
		if err != nil {
			return fmt.Errorf("trend sweeper: %w", err)
		}
		s.logger.Info("trend sweep scheduled", slog.Time("next_run", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			s.Run(ctx)
		}
	}
}
