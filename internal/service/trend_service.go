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

// DefaultLookbackDays is the trend window when none is configured.
const DefaultLookbackDays = 30

// TrendConfig holds the query parameters for trend analysis.
type TrendConfig struct {
	Markets      []domain.Market
	Currency     domain.Currency
	LookbackDays int
	// PlayerCounts joins the daily player count series into reports.
	PlayerCounts bool
	// Archive uploads every finished report when an archiver is configured.
	Archive bool
}

// TrendService computes day-bucketed price and volume trends.
type TrendService struct {
	source   domain.MarketDataSource
	norm     *normalize.Normalizer
	trends   domain.TrendStore
	archiver domain.TrendArchiver
	audit    domain.AuditStore
	metrics  *metrics.Metrics
	cfg      TrendConfig
	logger   *slog.Logger
	stamps
}

// NewTrendService creates a TrendService. trends, archiver, audit and m may
// be nil.
func NewTrendService(
	source domain.MarketDataSource,
	norm *normalize.Normalizer,
	trends domain.TrendStore,
	archiver domain.TrendArchiver,
	audit domain.AuditStore,
	m *metrics.Metrics,
	cfg TrendConfig,
	logger *slog.Logger,
) *TrendService {
	if cfg.Currency == "" {
		cfg.Currency = domain.DefaultCurrency
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = DefaultLookbackDays
	}
	return &TrendService{
		source:   source,
		norm:     norm,
		trends:   trends,
		archiver: archiver,
		audit:    audit,
		metrics:  m,
		cfg:      cfg,
		logger:   componentLogger(logger, "trend_service"),
		stamps:   defaultStamps(),
	}
}

// DefaultRange is the configured lookback ending today (UTC).
func (s *TrendService) DefaultRange() aggregate.Range {
	today := domain.DateOf(s.now())
	return aggregate.Range{Start: today.AddDays(-(s.cfg.LookbackDays - 1)), End: today}
}

// Analyze fetches the sales history for item over rng and computes the
// report. Missing bounds are filled from DefaultRange. A range with no
// priced day is reported with StatusNoData and a nil Stats.
func (s *TrendService) Analyze(ctx context.Context, item domain.ItemID, rng aggregate.Range) (domain.TrendReport, error) {
	start := time.Now()
	defer s.metrics.ObserveScan(metrics.OpTrends, start)

	rng, err := s.fill(rng)
	if err != nil {
		return domain.TrendReport{}, err
	}

	raws, err := s.source.SalesHistory(ctx, item, s.cfg.Markets, rng.Start, rng.End, s.cfg.Currency)
	if err != nil {
		s.metrics.ItemScanned(metrics.OpTrends, string(domain.StatusError))
		return domain.TrendReport{}, fmt.Errorf("trend_service: sales history %q: %w", item, err)
	}

	batch := s.norm.Days(item, raws)
	s.metrics.Rejected(string(domain.KindSale), len(batch.Rejected))
	if err := batch.Err(); err != nil {
		s.logger.WarnContext(ctx, "trend_service: malformed sales",
			slog.String("item", string(item)),
			slog.Int("rejected", len(batch.Rejected)),
			slog.String("error", err.Error()),
		)
	}

	report := domain.TrendReport{
		Item:        item,
		Start:       rng.Start,
		End:         rng.End,
		Status:      domain.StatusNoData,
		Rejected:    len(batch.Rejected),
		GeneratedAt: s.now(),
	}
	for _, d := range aggregate.Days(batch.Days) {
		if rng.Contains(d.Day) {
			report.Days = append(report.Days, d)
		}
	}
	if stats, ok := aggregate.TimeSeries(batch.Days, rng); ok {
		stats.Item = item
		report.Stats = &stats
		report.Status = domain.StatusOK
	}

	if s.cfg.PlayerCounts && len(report.Days) > 0 {
		report.Correlation = s.correlate(ctx, rng, report.Days)
	}

	s.metrics.ItemScanned(metrics.OpTrends, string(report.Status))
	s.persist(ctx, report)
	return report, nil
}

// fill completes missing bounds from DefaultRange and rejects an inverted
// result with ErrInvalidRange.
func (s *TrendService) fill(rng aggregate.Range) (aggregate.Range, error) {
	def := s.DefaultRange()
	switch {
	case rng.Start.IsZero() && rng.End.IsZero():
		rng = def
	case rng.End.IsZero():
		rng.End = def.End
	case rng.Start.IsZero():
		rng.Start = rng.End.AddDays(-(s.cfg.LookbackDays - 1))
	}
	if rng.End.Before(rng.Start) {
		return rng, fmt.Errorf("trend_service: %w: %s..%s", ErrInvalidRange, rng.Start, rng.End)
	}
	return rng, nil
}

// correlate joins player counts by date. A failed fetch leaves the
// correlation empty.
func (s *TrendService) correlate(ctx context.Context, rng aggregate.Range, days []domain.DayStat) []domain.CorrelationRow {
	raws, err := s.source.PlayerCounts(ctx, rng.Start, rng.End)
	if err != nil {
		s.logger.WarnContext(ctx, "trend_service: player counts failed", slog.String("error", err.Error()))
		return nil
	}
	batch := s.norm.PlayerCounts(raws)
	s.metrics.Rejected(string(domain.KindPlayerCount), len(batch.Rejected))
	return aggregate.JoinPlayerCounts(days, batch.Samples)
}

func (s *TrendService) persist(ctx context.Context, report domain.TrendReport) {
	if s.trends != nil && report.Stats != nil {
		if err := s.trends.Upsert(ctx, report.Start, report.End, *report.Stats); err != nil {
			s.logger.WarnContext(ctx, "trend_service: upsert failed",
				slog.String("item", string(report.Item)),
				slog.String("error", err.Error()),
			)
		}
	}
	if !s.cfg.Archive || s.archiver == nil {
		return
	}
	path, err := s.archiver.Archive(ctx, report)
	if err != nil {
		s.logger.WarnContext(ctx, "trend_service: archive failed",
			slog.String("item", string(report.Item)),
			slog.String("error", err.Error()),
		)
		return
	}
	if s.audit != nil {
		if err := s.audit.Log(ctx, domain.AuditTrendArchived, map[string]any{
			"item":  string(report.Item),
			"path":  path,
			"start": report.Start.String(),
			"end":   report.End.String(),
		}); err != nil {
			s.logger.WarnContext(ctx, "trend_service: audit log failed", slog.String("error", err.Error()))
		}
	}
}

// Stored returns previously computed statistics for item and rng. Missing
// bounds are filled as in Analyze.
func (s *TrendService) Stored(ctx context.Context, item domain.ItemID, rng aggregate.Range) (domain.TrendStats, error) {
	if s.trends == nil {
		return domain.TrendStats{}, ErrDisabled
	}
	rng, err := s.fill(rng)
	if err != nil {
		return domain.TrendStats{}, err
	}
	stats, err := s.trends.Get(ctx, item, rng.Start, rng.End)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.TrendStats{}, fmt.Errorf("trend_service: stored %q: %w", item, err)
	}
	return stats, err
}
