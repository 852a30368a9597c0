package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int64) *int64     { return &i }

func raw(market string, price float64) domain.RawListing {
	return domain.RawListing{Market: market, MinPrice: fptr(price), Listings: iptr(1)}
}

type fakeSource struct {
	mu       sync.Mutex
	listings map[domain.ItemID][]domain.RawListing
	history  map[domain.ItemID][]domain.RawListingSnapshot
	days     map[domain.ItemID][]domain.RawDay
	players  []domain.RawPlayerCount
	errs     map[domain.ItemID]error
	calls    map[domain.ItemID]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		listings: map[domain.ItemID][]domain.RawListing{},
		history:  map[domain.ItemID][]domain.RawListingSnapshot{},
		days:     map[domain.ItemID][]domain.RawDay{},
		errs:     map[domain.ItemID]error{},
		calls:    map[domain.ItemID]int{},
	}
}

func (f *fakeSource) hit(item domain.ItemID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[item]++
	return f.errs[item]
}

func (f *fakeSource) LatestListings(_ context.Context, item domain.ItemID, _ []domain.Market, _ domain.Currency) ([]domain.RawListing, error) {
	if err := f.hit(item); err != nil {
		return nil, err
	}
	return f.listings[item], nil
}

func (f *fakeSource) ListingHistory(_ context.Context, item domain.ItemID, _ []domain.Market, _, _ time.Time, _ domain.Currency) ([]domain.RawListingSnapshot, error) {
	if err := f.hit(item); err != nil {
		return nil, err
	}
	return f.history[item], nil
}

func (f *fakeSource) SalesHistory(_ context.Context, item domain.ItemID, _ []domain.Market, _, _ domain.Date, _ domain.Currency) ([]domain.RawDay, error) {
	if err := f.hit(item); err != nil {
		return nil, err
	}
	return f.days[item], nil
}

func (f *fakeSource) PlayerCounts(_ context.Context, _, _ domain.Date) ([]domain.RawPlayerCount, error) {
	return f.players, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[domain.ItemID]domain.ListingSnapshot
}

func (c *memCache) Set(_ context.Context, item domain.ItemID, snap domain.ListingSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[domain.ItemID]domain.ListingSnapshot{}
	}
	c.data[item] = snap
	return nil
}

func (c *memCache) Get(_ context.Context, item domain.ItemID) (domain.ListingSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.data[item]
	if !ok {
		return domain.ListingSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

type memOpps struct {
	rows []domain.ArbitrageOpportunity
	err  error
}

func (m *memOpps) Insert(_ context.Context, o domain.ArbitrageOpportunity) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, o)
	return nil
}

func (m *memOpps) ListRecent(_ context.Context, limit int) ([]domain.ArbitrageOpportunity, error) {
	if limit > len(m.rows) {
		limit = len(m.rows)
	}
	return m.rows[:limit], nil
}

func (m *memOpps) ListByItem(_ context.Context, item domain.ItemID, _ domain.ListOpts) ([]domain.ArbitrageOpportunity, error) {
	var out []domain.ArbitrageOpportunity
	for _, r := range m.rows {
		if r.Item == item {
			out = append(out, r)
		}
	}
	return out, nil
}

type memAlerts struct{ rows []domain.Alert }

func (m *memAlerts) Insert(_ context.Context, a domain.Alert) error {
	m.rows = append(m.rows, a)
	return nil
}

func (m *memAlerts) ListRecent(_ context.Context, _ int) ([]domain.Alert, error) {
	return m.rows, nil
}

type memLocks struct{ held map[string]bool }

func (m *memLocks) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	if m.held == nil {
		m.held = map[string]bool{}
	}
	if m.held[key] {
		return nil, domain.ErrLockHeld
	}
	m.held[key] = true
	return func() { delete(m.held, key) }, nil
}

type recBus struct {
	mu   sync.Mutex
	msgs map[string]int
}

func (b *recBus) Publish(_ context.Context, channel string, _ []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.msgs == nil {
		b.msgs = map[string]int{}
	}
	b.msgs[channel]++
	return nil
}

func (b *recBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, fmt.Errorf("not supported")
}

type recAudit struct{ events []string }

func (a *recAudit) Log(_ context.Context, event string, _ map[string]any) error {
	a.events = append(a.events, event)
	return nil
}

func (a *recAudit) List(context.Context, domain.ListOpts) ([]domain.AuditEntry, error) {
	return nil, nil
}

type memTrends struct {
	rows map[string]domain.TrendStats
}

func (m *memTrends) Upsert(_ context.Context, start, end domain.Date, stats domain.TrendStats) error {
	if m.rows == nil {
		m.rows = map[string]domain.TrendStats{}
	}
	m.rows[string(stats.Item)+start.String()+end.String()] = stats
	return nil
}

func (m *memTrends) Get(_ context.Context, item domain.ItemID, start, end domain.Date) (domain.TrendStats, error) {
	st, ok := m.rows[string(item)+start.String()+end.String()]
	if !ok {
		return domain.TrendStats{}, domain.ErrNotFound
	}
	return st, nil
}

type memArchiver struct{ reports []domain.TrendReport }

func (m *memArchiver) Archive(_ context.Context, r domain.TrendReport) (string, error) {
	m.reports = append(m.reports, r)
	return "trends/" + string(r.Item) + ".json", nil
}

func fixedStamps() stamps {
	n := 0
	return stamps{
		now: func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) },
		newID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}
