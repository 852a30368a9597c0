package pipeline

import (
	"context"
	"errors"
	"strings"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/arbitrage"
	"github.com/alanyoungcy/skinscout/internal/domain"
	"github.com/alanyoungcy/skinscout/internal/normalize"
	"github.com/alanyoungcy/skinscout/internal/notify"
	"github.com/alanyoungcy/skinscout/internal/service"
)

var discard = slog.New(slog.DiscardHandler)

func TestParseSchedule(t *testing.T) {
	bad := []string{"", "* * * *", "60 * * * *", "*/0 * * * *", "5-1 * * * *", "a * * * *"}
	for _, expr := range bad {
		if _, err := ParseSchedule(expr); err == nil {
			t.Errorf("ParseSchedule(%q) accepted", expr)
		}
	}
}

func TestScheduleNext(t *testing.T) {
	base := time.Date(2024, 5, 10, 12, 7, 30, 0, time.UTC) // Friday

	cases := []struct {
		expr string
		want time.Time
	}{
		{"* * * * *", time.Date(2024, 5, 10, 12, 8, 0, 0, time.UTC)},
		{"*/15 * * * *", time.Date(2024, 5, 10, 12, 15, 0, 0, time.UTC)},
		{"0 3 * * *", time.Date(2024, 5, 11, 3, 0, 0, 0, time.UTC)},
		{"30 9 * * 1-5", time.Date(2024, 5, 13, 9, 30, 0, 0, time.UTC)},
		{"0 0 1 6 *", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"10,40 12 * * *", time.Date(2024, 5, 10, 12, 10, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			s, err := ParseSchedule(tc.expr)
			if err != nil {
				t.Fatal(err)
			}
			got, err := s.Next(base)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("Next = %v, want %v", got, tc.want)
			}
		})
	}
}

type stubSource struct {
	listings map[domain.ItemID][]domain.RawListing
	fail     map[domain.ItemID]error
}

func (s stubSource) LatestListings(_ context.Context, item domain.ItemID, _ []domain.Market, _ domain.Currency) ([]domain.RawListing, error) {
	if err := s.fail[item]; err != nil {
		return nil, err
	}
	return s.listings[item], nil
}

func (s stubSource) ListingHistory(context.Context, domain.ItemID, []domain.Market, time.Time, time.Time, domain.Currency) ([]domain.RawListingSnapshot, error) {
	return nil, nil
}

func (s stubSource) SalesHistory(context.Context, domain.ItemID, []domain.Market, domain.Date, domain.Date, domain.Currency) ([]domain.RawDay, error) {
	return nil, nil
}

func (s stubSource) PlayerCounts(context.Context, domain.Date, domain.Date) ([]domain.RawPlayerCount, error) {
	return nil, nil
}

func rl(market string, price float64) domain.RawListing {
	n := int64(3)
	return domain.RawListing{Market: market, MinPrice: &price, Listings: &n}
}

func TestWatcherPass(t *testing.T) {
	src := stubSource{listings: map[domain.ItemID][]domain.RawListing{
		"watched": {rl("SKINPORT", 100), rl("CSFLOAT", 80)},
		"target":  {rl("SKINPORT", 9), rl("CSFLOAT", 50)},
	}}
	ls := service.NewListingService(src, normalize.New(normalize.PolicyReject), nil, nil, service.ListingConfig{}, discard)
	arb := service.NewArbService(ls, arbitrage.NewDetector(nil, nil), nil, nil, nil, nil, nil,
		service.ArbConfig{Fees: domain.ReferenceFees(), TopN: 3}, discard)
	alerts := service.NewAlertService(ls, nil, nil, nil, nil, nil, nil, service.AlertConfig{}, discard)

	w := NewWatcher(ls, arb, alerts,
		[]domain.ItemID{"watched"},
		[]domain.PriceTarget{{Item: "target", Price: decimal.NewFromInt(10)}},
		discard)
	rep := w.Pass(context.Background())

	if len(rep.Listings) != 2 {
		t.Fatalf("listings = %d, want 2", len(rep.Listings))
	}
	if len(rep.Arbitrage) != 1 || rep.Arbitrage[0].Item != "watched" {
		t.Fatalf("arbitrage covered %+v, want watched only", rep.Arbitrage)
	}
	if len(rep.Arbitrage[0].Opportunities) != 1 {
		t.Errorf("opportunities = %+v", rep.Arbitrage[0].Opportunities)
	}
	if len(rep.Alerts.Alerts) != 1 || rep.Alerts.Alerts[0].Item != "target" {
		t.Errorf("alerts = %+v", rep.Alerts.Alerts)
	}
}

func TestWatcherRunLoopStopsOnCancel(t *testing.T) {
	ls := service.NewListingService(stubSource{}, normalize.New(normalize.PolicyDrop), nil, nil, service.ListingConfig{}, discard)
	w := NewWatcher(ls, nil, nil, []domain.ItemID{"x"}, nil, discard)

	ctx, cancel := context.WithCancel(context.Background())
	passes := 0
	err := w.RunLoop(ctx, time.Hour, func(PassReport) {
		passes++
		cancel()
	})
	if err == nil || passes != 1 {
		t.Errorf("err = %v passes = %d, want context error after 1 pass", err, passes)
	}
}

func TestWatcherRunLoopRejectsNonPositiveInterval(t *testing.T) {
	ls := service.NewListingService(stubSource{}, normalize.New(normalize.PolicyDrop), nil, nil, service.ListingConfig{}, discard)
	w := NewWatcher(ls, nil, nil, []domain.ItemID{"x"}, nil, discard)

	passes := 0
	err := w.RunLoop(context.Background(), 0, func(PassReport) { passes++ })
	if err == nil || passes != 0 {
		t.Errorf("err = %v passes = %d, want error before any pass", err, passes)
	}
}

type recSender struct {
	titles   []string
	messages []string
}

func (r *recSender) Send(_ context.Context, title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return nil
}

func (r *recSender) Name() string { return "rec" }

func TestWatcherNotifiesScanErrors(t *testing.T) {
	src := stubSource{
		listings: map[domain.ItemID][]domain.RawListing{"ok": {rl("SKINPORT", 10)}},
		fail:     map[domain.ItemID]error{"bad": errors.New("upstream 503")},
	}
	ls := service.NewListingService(src, normalize.New(normalize.PolicyReject), nil, nil, service.ListingConfig{}, discard)
	rec := &recSender{}
	n := notify.NewNotifier([]notify.Sender{rec}, []string{notify.EventScanError}, discard)

	w := NewWatcher(ls, nil, nil, []domain.ItemID{"ok", "bad"}, nil, discard).WithNotifier(n)
	w.Pass(context.Background())

	if len(rec.titles) != 1 || rec.titles[0] != "Scan errors: 1 of 2 items" {
		t.Fatalf("titles = %v", rec.titles)
	}
	if !strings.Contains(rec.messages[0], "bad:") || !strings.Contains(rec.messages[0], "upstream 503") {
		t.Errorf("message = %q", rec.messages[0])
	}

	rec.titles = nil
	NewWatcher(ls, nil, nil, []domain.ItemID{"ok"}, nil, discard).WithNotifier(n).Pass(context.Background())
	if len(rec.titles) != 0 {
		t.Errorf("notified without failures: %v", rec.titles)
	}
}
