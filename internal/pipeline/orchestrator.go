package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Orchestrator runs the watcher loop and, when scheduled, the trend sweeper.
type Orchestrator struct {
	watcher  *Watcher
	sweeper  *TrendSweeper
	interval time.Duration
	schedule *Schedule
	onPass   func(PassReport)
	logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator. sweeper and schedule may be nil.
func NewOrchestrator(
	watcher *Watcher,
	sweeper *TrendSweeper,
	interval time.Duration,
	schedule *Schedule,
	onPass func(PassReport),
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		watcher:  watcher,
		sweeper:  sweeper,
		interval: interval,
		schedule: schedule,
		onPass:   onPass,
		logger:   logger.With(slog.String("component", "orchestrator")),
	}
}

// Run blocks until ctx is cancelled or a loop fails. Cancellation is a clean
// shutdown and returns nil.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("pipeline starting", slog.Duration("interval", o.interval))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := o.watcher.RunLoop(ctx, o.interval, o.onPass)
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("watcher: %w", err)
	})

	if o.sweeper != nil && o.schedule != nil {
		o.logger.Info("trend sweep enabled", slog.String("schedule", o.schedule.String()))
		g.Go(func() error {
			err := o.sweeper.RunCron(ctx, *o.schedule)
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("trend sweeper: %w", err)
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Error("pipeline stopped with error", slog.String("error", err.Error()))
		return err
	}
	o.logger.Info("pipeline stopped cleanly")
	return nil
}
