package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWith(reg, reg)

	m.ItemScanned(OpListings, "ok")
	m.ItemScanned(OpListings, "no_data")
	m.Rejected("listing", 3)
	m.Rejected("sale", 0)
	m.OpportunitiesFound(2)
	m.AlertsTriggered(1)
	m.ObserveScan(OpArbitrage, time.Now())

	checks := map[string]float64{
		"skinscout_items_scanned_total":    2,
		"skinscout_records_rejected_total": 3,
		"skinscout_opportunities_total":    2,
		"skinscout_alerts_total":           1,
	}
	for name, want := range checks {
		if got := counterValue(t, reg, name); got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ItemScanned(OpAlerts, "ok")
	m.Rejected("day", 1)
	m.OpportunitiesFound(1)
	m.AlertsTriggered(1)
	m.ObserveScan(OpTrends, time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("nil handler status = %d, want 404", rec.Code)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.AlertsTriggered(4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "skinscout_alerts_total 4") {
		t.Errorf("alerts counter missing from exposition:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Errorf("go collector missing")
	}
}
