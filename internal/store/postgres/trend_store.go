package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// TrendStore implements domain.TrendStore using PostgreSQL.
type TrendStore struct {
	pool *pgxpool.Pool
}

var _ domain.TrendStore = (*TrendStore)(nil)

// NewTrendStore creates a new TrendStore backed by the given pool.
func NewTrendStore(pool *pgxpool.Pool) *TrendStore {
	return &TrendStore{pool: pool}
}

// Upsert replaces the stored statistics for (item, start, end).
func (s *TrendStore) Upsert(ctx context.Context, start, end domain.Date, st domain.TrendStats) error {
	const query = `
		INSERT INTO trend_snapshots (
			item, range_start, range_end, first_day, last_day,
			min_price, max_price, avg_price, total_volume, avg_daily_volume,
			price_change, price_change_percent, days_tracked, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (item, range_start, range_end) DO UPDATE SET
			first_day            = EXCLUDED.first_day,
			last_day             = EXCLUDED.last_day,
			min_price            = EXCLUDED.min_price,
			max_price            = EXCLUDED.max_price,
			avg_price            = EXCLUDED.avg_price,
			total_volume         = EXCLUDED.total_volume,
			avg_daily_volume     = EXCLUDED.avg_daily_volume,
			price_change         = EXCLUDED.price_change,
			price_change_percent = EXCLUDED.price_change_percent,
			days_tracked         = EXCLUDED.days_tracked,
			computed_at          = NOW()`

	_, err := s.pool.Exec(ctx, query,
		string(st.Item), dateArg(start), dateArg(end), st.FirstDay.Time(), st.LastDay.Time(),
		st.MinPrice, st.MaxPrice, st.AvgPrice, st.TotalVolume, st.AvgDailyVolume,
		st.PriceChange, st.PriceChangePercent, st.DaysTracked,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert trend %q: %w", st.Item, err)
	}
	return nil
}

// Get returns the stored statistics for (item, start, end), or
// domain.ErrNotFound.
func (s *TrendStore) Get(ctx context.Context, item domain.ItemID, start, end domain.Date) (domain.TrendStats, error) {
	const query = `
		SELECT first_day, last_day, min_price, max_price, avg_price, total_volume,
			avg_daily_volume, price_change, price_change_percent, days_tracked
		FROM trend_snapshots
		WHERE item = $1 AND range_start = $2 AND range_end = $3`

	st := domain.TrendStats{Item: item}
	var first, last time.Time
	err := s.pool.QueryRow(ctx, query, string(item), dateArg(start), dateArg(end)).Scan(
		&first, &last, &st.MinPrice, &st.MaxPrice, &st.AvgPrice, &st.TotalVolume,
		&st.AvgDailyVolume, &st.PriceChange, &st.PriceChangePercent, &st.DaysTracked,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TrendStats{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.TrendStats{}, fmt.Errorf("postgres: get trend %q: %w", item, err)
	}
	st.FirstDay = domain.DateOf(first)
	st.LastDay = domain.DateOf(last)
	return st, nil
}

// dateArg stores an open range bound as the epoch so the key stays non-null.
func dateArg(d domain.Date) time.Time {
	if d.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return d.Time()
}
