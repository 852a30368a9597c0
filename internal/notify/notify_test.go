package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

type recordingSender struct {
	name  string
	err   error
	calls []string
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	r.calls = append(r.calls, title)
	return r.err
}

func (r *recordingSender) Name() string { return r.name }

func TestNotifier_FiltersEvents(t *testing.T) {
	s := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{s}, []string{EventPriceAlert}, nil)

	if err := n.Notify(context.Background(), EventArbDetected, "arb", "x"); err != nil {
		t.Fatal(err)
	}
	if err := n.Notify(context.Background(), EventPriceAlert, "alert", "x"); err != nil {
		t.Fatal(err)
	}
	if len(s.calls) != 1 || s.calls[0] != "alert" {
		t.Errorf("calls = %v, want [alert]", s.calls)
	}
	if !n.Enabled(EventPriceAlert) || n.Enabled(EventScanError) {
		t.Errorf("Enabled mismatch")
	}

	if err := n.NotifyAll(context.Background(), "all", "x"); err != nil {
		t.Fatal(err)
	}
	if len(s.calls) != 2 {
		t.Errorf("NotifyAll bypassed: calls = %v", s.calls)
	}
}

func TestNotifier_EmptyFilterAllowsAll(t *testing.T) {
	s := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{s}, nil, nil)
	_ = n.Notify(context.Background(), "anything", "t", "m")
	if len(s.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(s.calls))
	}
}

func TestNotifier_SenderFailureContinues(t *testing.T) {
	boom := errors.New("boom")
	bad := &recordingSender{name: "bad", err: boom}
	good := &recordingSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, nil)

	err := n.NotifyAll(context.Background(), "t", "m")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapping boom", err)
	}
	if len(good.calls) != 1 {
		t.Errorf("second sender not called")
	}
}

func TestNotifier_Nil(t *testing.T) {
	var n *Notifier
	if err := n.Notify(context.Background(), EventPriceAlert, "t", "m"); err != nil {
		t.Errorf("nil notifier: %v", err)
	}
	if n.Enabled(EventPriceAlert) {
		t.Errorf("nil notifier enabled")
	}
}

func TestTelegramSender_Send(t *testing.T) {
	var gotPath string
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewTelegramSender("tok", "42").WithAPIURL(srv.URL + "/")
	if err := s.Send(context.Background(), "Title", "body"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/bottok/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if payload["chat_id"] != "42" || payload["text"] != "*Title*\nbody" {
		t.Errorf("payload = %v", payload)
	}
}

func TestDiscordSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewDiscordSender(srv.URL).Send(context.Background(), "t", "m")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v, want status 429", err)
	}
}

func TestFormatOpportunity(t *testing.T) {
	opp := domain.ArbitrageOpportunity{
		Item:       "AK-47 | Redline (Field-Tested)",
		BuyMarket:  domain.MarketCSFloat,
		BuyPrice:   decimal.NewFromInt(90),
		SellMarket: domain.MarketSkinport,
		SellPrice:  decimal.NewFromInt(120),
		SellFee:    decimal.RequireFromString("0.12"),
		Profit:     decimal.RequireFromString("15.6"),
		ROIPercent: decimal.RequireFromString("17.333"),
	}
	title, msg := FormatOpportunity(opp)
	if title != "Arbitrage: AK-47 | Redline (Field-Tested)" {
		t.Errorf("title = %q", title)
	}
	want := "buy CSFLOAT @ 90.00, sell SKINPORT @ 120.00 (fee 12.0%): profit 15.60, ROI 17.33%"
	if msg != want {
		t.Errorf("msg = %q\nwant  %q", msg, want)
	}
}

func TestFormatAlert(t *testing.T) {
	a := domain.Alert{
		Item:           "AWP | Asiimov (Field-Tested)",
		Market:         domain.MarketBuffMarket,
		TriggeredPrice: decimal.NewFromInt(95),
		TargetPrice:    decimal.NewFromInt(100),
		Savings:        decimal.NewFromInt(5),
	}
	_, msg := FormatAlert(a)
	if msg != "BUFFMARKET at 95.00 (target 100.00, saving 5.00)" {
		t.Errorf("msg = %q", msg)
	}
}
