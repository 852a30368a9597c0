package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/skinscout/internal/arbitrage"
	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/metrics"
	"github.com/alanyoungcy/skinscout/internal/notify"
)

// ArbConfig holds the fee table and presentation settings of a scan.
type ArbConfig struct {
	Fees   domain.FeeTable
	RankBy arbitrage.RankBy
	// TopN truncates each item's ranked list; <= 0 keeps everything.
	TopN int
}

// ItemArbReport is the ranked arbitrage result for one item.
type ItemArbReport struct {
	ItemOutcome
	Opportunities []domain.ArbitrageOpportunity
	// Candidates is the number of profitable pairings before truncation.
	Candidates int
}

// ArbService runs the detector over fresh listings and records the results.
// Store, bus, audit and notifier are optional; their failures are logged.
type ArbService struct {
	listings *ListingService
	detector *arbitrage.Detector
	opps     domain.OpportunityStore
	bus      domain.SignalBus
	audit    domain.AuditStore
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	cfg      ArbConfig
	logger   *slog.Logger
	stamps
}

// NewArbService creates an ArbService.
func NewArbService(
	listings *ListingService,
	detector *arbitrage.Detector,
	opps domain.OpportunityStore,
	bus domain.SignalBus,
	audit domain.AuditStore,
	notifier *notify.Notifier,
	m *metrics.Metrics,
	cfg ArbConfig,
	logger *slog.Logger,
) *ArbService {
	if cfg.RankBy == "" {
		cfg.RankBy = arbitrage.RankByROI
	}
	return &ArbService{
		listings: listings,
		detector: detector,
		opps:     opps,
		bus:      bus,
		audit:    audit,
		notifier: notifier,
		metrics:  m,
		cfg:      cfg,
		logger:   componentLogger(logger, "arb_service"),
		stamps:   defaultStamps(),
	}
}

// Scan fetches listings for items and detects opportunities with the
// configured top-N.
func (s *ArbService) Scan(ctx context.Context, items []domain.ItemID) []ItemArbReport {
	return s.ScanTop(ctx, items, s.cfg.TopN)
}

// ScanTop is Scan with an explicit truncation limit.
func (s *ArbService) ScanTop(ctx context.Context, items []domain.ItemID, topN int) []ItemArbReport {
	return s.detect(ctx, s.listings.Scan(ctx, items), topN)
}

// Detect runs detection over listing reports that were already fetched.
func (s *ArbService) Detect(ctx context.Context, listings []ItemListingReport) []ItemArbReport {
	return s.detect(ctx, listings, s.cfg.TopN)
}

func (s *ArbService) detect(ctx context.Context, listings []ItemListingReport, topN int) []ItemArbReport {
	start := time.Now()
	defer s.metrics.ObserveScan(metrics.OpArbitrage, start)

	reports := make([]ItemArbReport, len(listings))
	total := 0
	for i, lr := range listings {
		rep := ItemArbReport{ItemOutcome: lr.ItemOutcome}
		if lr.Status == domain.StatusOK {
			found := s.detector.Detect(lr.Item, lr.Listings, s.cfg.Fees)
			rep.Candidates = len(found)
			rep.Opportunities = arbitrage.Rank(found, s.cfg.RankBy, topN)
			s.stamp(rep.Opportunities)
			if len(rep.Opportunities) == 0 {
				rep.Status = domain.StatusNoData
			}
			total += len(rep.Opportunities)
		}
		s.metrics.ItemScanned(metrics.OpArbitrage, string(rep.Status))
		reports[i] = rep
	}

	s.metrics.OpportunitiesFound(total)
	s.record(ctx, reports)

	s.logger.InfoContext(ctx, "arb_service: scan complete",
		slog.Int("items", len(reports)),
		slog.Int("opportunities", total),
		slog.String("pairing", s.detector.Pairing().Name()),
		slog.String("rank_by", string(s.cfg.RankBy)),
	)
	if s.audit != nil {
		if err := s.audit.Log(ctx, domain.AuditArbScan, map[string]any{
			"items":         len(reports),
			"opportunities": total,
			"pairing":       s.detector.Pairing().Name(),
		}); err != nil {
			s.logger.WarnContext(ctx, "arb_service: audit log failed", slog.String("error", err.Error()))
		}
	}
	return reports
}

func (s *ArbService) stamp(opps []domain.ArbitrageOpportunity) {
	at := s.now()
	for i := range opps {
		opps[i].ID = s.newID()
		opps[i].DetectedAt = at
	}
}

// record persists, publishes and notifies every reported opportunity.
func (s *ArbService) record(ctx context.Context, reports []ItemArbReport) {
	for _, rep := range reports {
		if len(rep.Opportunities) == 0 {
			continue
		}
		for _, opp := range rep.Opportunities {
			if s.opps != nil {
				if err := s.opps.Insert(ctx, opp); err != nil {
					s.logger.WarnContext(ctx, "arb_service: insert opportunity failed",
						slog.String("opp_id", opp.ID),
						slog.String("error", err.Error()),
					)
				}
			}
			if s.bus != nil {
				payload, _ := json.Marshal(opp)
				if err := s.bus.Publish(ctx, domain.ChannelArbitrage, payload); err != nil {
					s.logger.WarnContext(ctx, "arb_service: publish failed",
						slog.String("opp_id", opp.ID),
						slog.String("error", err.Error()),
					)
				}
			}
		}
		title, msg := notify.FormatOpportunities(rep.Item, rep.Opportunities)
		if err := s.notifier.Notify(ctx, notify.EventArbDetected, title, msg); err != nil {
			s.logger.WarnContext(ctx, "arb_service: notify failed",
				slog.String("item", string(rep.Item)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Recent returns the last persisted opportunities.
func (s *ArbService) Recent(ctx context.Context, limit int) ([]domain.ArbitrageOpportunity, error) {
	if s.opps == nil {
		return nil, ErrDisabled
	}
	opps, err := s.opps.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("arb_service: list recent: %w", err)
	}
	return opps, nil
}

// ByItem returns persisted opportunities for one item.
func (s *ArbService) ByItem(ctx context.Context, item domain.ItemID, opts domain.ListOpts) ([]domain.ArbitrageOpportunity, error) {
	if s.opps == nil {
		return nil, ErrDisabled
	}
	opps, err := s.opps.ListByItem(ctx, item, opts)
	if err != nil {
		return nil, fmt.Errorf("arb_service: list %q: %w", item, err)
	}
	return opps, nil
}

// Fees returns the fee table scans use.
func (s *ArbService) Fees() domain.FeeTable { return s.cfg.Fees }
