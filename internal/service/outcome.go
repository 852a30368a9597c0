// Package service orchestrates batch operations over a watchlist: fetching from
// the market data source, normalizing, running the pure aggregation and
// detection core, and fanning results out to stores, the signal bus and
// notifiers. A failure on one item never affects another item's result.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// ErrDisabled is returned by read operations whose backing store is not
// configured.
var ErrDisabled = errors.New("service: backing store not configured")

// ErrInvalidRange is returned when a date range ends before it starts once
// missing bounds are filled.
var ErrInvalidRange = errors.New("service: range end before start")

// DefaultConcurrency bounds per-item fan-out when no limit is configured.
const DefaultConcurrency = 4

// ItemOutcome is the per-item status of a batch operation.
type ItemOutcome struct {
	Item   domain.ItemID
	Status domain.Status
	// Err is set when Status is StatusError.
	Err error
	// Rejected counts source records the normalizer excluded.
	Rejected int
	// Malformed joins the rejected records under the reject policy.
	Malformed error
}

func (o *ItemOutcome) fail(err error) {
	o.Status = domain.StatusError
	o.Err = err
}

// forEachItem runs fn for every item with at most limit in flight. fn writes
// its result into its own slot; errors are never propagated through the
// group so one item cannot cancel the rest.
func forEachItem(ctx context.Context, items []domain.ItemID, limit int, fn func(ctx context.Context, i int, item domain.ItemID)) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			fn(ctx, i, item)
			return nil
		})
	}
	_ = g.Wait()
}

// uniqueItems drops blank and repeated items, keeping first-seen order.
func uniqueItems(items []domain.ItemID) []domain.ItemID {
	seen := make(map[domain.ItemID]bool, len(items))
	out := make([]domain.ItemID, 0, len(items))
	for _, it := range items {
		if !it.Valid() || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// clock and id generation are swappable in tests.
type stamps struct {
	now   func() time.Time
	newID func() string
}

func defaultStamps() stamps {
	return stamps{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func componentLogger(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return logger.With(slog.String("component", name))
}
