package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/skinscout/internal/aggregate"
	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/metrics"
	"github.com/alanyoungcy/skinscout/internal/normalize"
)

// ListingConfig holds the query parameters for listing fetches.
type ListingConfig struct {
	Markets     []domain.Market
	Currency    domain.Currency
	Concurrency int
}

// ItemListingReport is one item's latest cross-market listing view.
type ItemListingReport struct {
	ItemOutcome
	Summary domain.ListingSummary
	// Listings keeps source order.
	Listings  []domain.MarketListing
	FetchedAt time.Time
}

// HistoryReport is an item's cheapest listing over time.
type HistoryReport struct {
	Item     domain.ItemID
	Lows     []domain.SnapshotLow
	Rejected int
}

// ListingService fetches, normalizes and summarises current listings.
type ListingService struct {
	source  domain.MarketDataSource
	norm    *normalize.Normalizer
	cache   domain.ListingCache
	metrics *metrics.Metrics
	cfg     ListingConfig
	logger  *slog.Logger
	stamps
}

// NewListingService creates a ListingService. cache and m may be nil.
func NewListingService(
	source domain.MarketDataSource,
	norm *normalize.Normalizer,
	cache domain.ListingCache,
	m *metrics.Metrics,
	cfg ListingConfig,
	logger *slog.Logger,
) *ListingService {
	if cfg.Currency == "" {
		cfg.Currency = domain.DefaultCurrency
	}
	return &ListingService{
		source:  source,
		norm:    norm,
		cache:   cache,
		metrics: m,
		cfg:     cfg,
		logger:  componentLogger(logger, "listing_service"),
		stamps:  defaultStamps(),
	}
}

// Scan fetches every item concurrently. The result has one report per
// unique item in input order.
func (s *ListingService) Scan(ctx context.Context, items []domain.ItemID) []ItemListingReport {
	start := time.Now()
	defer s.metrics.ObserveScan(metrics.OpListings, start)

	items = uniqueItems(items)
	reports := make([]ItemListingReport, len(items))
	forEachItem(ctx, items, s.cfg.Concurrency, func(ctx context.Context, i int, item domain.ItemID) {
		reports[i] = s.Fetch(ctx, item)
	})

	s.logger.InfoContext(ctx, "listing_service: scan complete",
		slog.Int("items", len(items)),
		slog.Int("ok", countStatus(reports, domain.StatusOK)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return reports
}

// Fetch builds the listing report for one item.
func (s *ListingService) Fetch(ctx context.Context, item domain.ItemID) ItemListingReport {
	rep := ItemListingReport{ItemOutcome: ItemOutcome{Item: item}, FetchedAt: s.now()}
	defer func() { s.metrics.ItemScanned(metrics.OpListings, string(rep.Status)) }()

	raws, err := s.source.LatestListings(ctx, item, s.cfg.Markets, s.cfg.Currency)
	if err != nil {
		s.logger.WarnContext(ctx, "listing_service: fetch failed",
			slog.String("item", string(item)),
			slog.String("error", err.Error()),
		)
		rep.fail(fmt.Errorf("listing_service: fetch %q: %w", item, err))
		return rep
	}

	batch := s.norm.Listings(item, raws)
	rep.Rejected = len(batch.Rejected)
	rep.Malformed = batch.Err()
	s.metrics.Rejected(string(domain.KindListing), rep.Rejected)
	if rep.Malformed != nil {
		s.logger.WarnContext(ctx, "listing_service: malformed listings",
			slog.String("item", string(item)),
			slog.Int("rejected", rep.Rejected),
			slog.String("error", rep.Malformed.Error()),
		)
	}

	rep.Listings = batch.Listings
	summary, ok := aggregate.Listings(batch.Listings)
	if !ok {
		rep.Status = domain.StatusNoData
		return rep
	}
	summary.Item = item
	rep.Summary = summary
	rep.Status = domain.StatusOK

	if s.cache != nil {
		snap := domain.ListingSnapshot{Timestamp: rep.FetchedAt, Listings: batch.Listings}
		if err := s.cache.Set(ctx, item, snap); err != nil {
			s.logger.WarnContext(ctx, "listing_service: cache set failed",
				slog.String("item", string(item)),
				slog.String("error", err.Error()),
			)
		}
	}
	return rep
}

// Cached returns the last cached snapshot for item. It returns ErrDisabled
// without a cache and domain.ErrNotFound when nothing is cached.
func (s *ListingService) Cached(ctx context.Context, item domain.ItemID) (domain.ListingSnapshot, error) {
	if s.cache == nil {
		return domain.ListingSnapshot{}, ErrDisabled
	}
	snap, err := s.cache.Get(ctx, item)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.ListingSnapshot{}, fmt.Errorf("listing_service: cached %q: %w", item, err)
	}
	return snap, err
}

// History returns the lowest listing at each snapshot between start and end.
func (s *ListingService) History(ctx context.Context, item domain.ItemID, start, end time.Time) (HistoryReport, error) {
	raws, err := s.source.ListingHistory(ctx, item, s.cfg.Markets, start, end, s.cfg.Currency)
	if err != nil {
		return HistoryReport{}, fmt.Errorf("listing_service: history %q: %w", item, err)
	}
	batch := s.norm.Snapshots(item, raws)
	s.metrics.Rejected(string(domain.KindSnapshot), len(batch.Rejected))
	if err := batch.Err(); err != nil {
		s.logger.WarnContext(ctx, "listing_service: malformed history",
			slog.String("item", string(item)),
			slog.Int("rejected", len(batch.Rejected)),
			slog.String("error", err.Error()),
		)
	}
	return HistoryReport{
		Item:     item,
		Lows:     aggregate.SnapshotLows(batch.Snapshots),
		Rejected: len(batch.Rejected),
	}, nil
}

func countStatus(reports []ItemListingReport, st domain.Status) int {
	n := 0
	for _, r := range reports {
		if r.Status == st {
			n++
		}
	}
	return n
}
