package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

var _ domain.OpportunityStore = (*OpportunityStore)(nil)

// NewOpportunityStore creates a new OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const oppColumns = `item, buy_market, buy_price, sell_market, sell_price,
	sell_fee, net_sell_proceeds, profit, roi_percent, fee_defaulted, detected_at`

const oppSelectCols = `id::text, ` + oppColumns

// Insert stores a detected opportunity.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.ArbitrageOpportunity) error {
	const query = `
		INSERT INTO arb_opportunities (id, ` + oppColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, query,
		opp.ID, string(opp.Item), string(opp.BuyMarket), opp.BuyPrice,
		string(opp.SellMarket), opp.SellPrice, opp.SellFee, opp.NetSellProceeds,
		opp.Profit, opp.ROIPercent, opp.FeeDefaulted, opp.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// ListRecent returns the most recent opportunities ordered by detection time.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.ArbitrageOpportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM arb_opportunities ORDER BY detected_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	return collectOpportunities(rows)
}

// ListByItem returns one item's opportunities, newest first.
func (s *OpportunityStore) ListByItem(ctx context.Context, item domain.ItemID, opts domain.ListOpts) ([]domain.ArbitrageOpportunity, error) {
	tail, args := listClause(opts, "detected_at", []any{string(item)})
	query := `SELECT ` + oppSelectCols + ` FROM arb_opportunities WHERE item = $1` + tail

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities for %q: %w", item, err)
	}
	return collectOpportunities(rows)
}

func collectOpportunities(rows pgx.Rows) ([]domain.ArbitrageOpportunity, error) {
	defer rows.Close()

	var opps []domain.ArbitrageOpportunity
	for rows.Next() {
		var (
			opp                    domain.ArbitrageOpportunity
			item, buyMkt, sellMkt string
		)
		if err := rows.Scan(
			&opp.ID, &item, &buyMkt, &opp.BuyPrice, &sellMkt, &opp.SellPrice,
			&opp.SellFee, &opp.NetSellProceeds, &opp.Profit, &opp.ROIPercent,
			&opp.FeeDefaulted, &opp.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opp.Item = domain.ItemID(item)
		opp.BuyMarket = domain.Market(buyMkt)
		opp.SellMarket = domain.Market(sellMkt)
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list opportunities rows: %w", err)
	}
	return opps, nil
}
