package arbitrage

import (
	"reflect"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func l(m string, price string) domain.MarketListing {
	return domain.MarketListing{Market: domain.Market(m), MinPrice: dec(price)}
}

func fees(t *testing.T, m map[domain.Market]string) domain.FeeTable {
	t.Helper()
	fm := make(map[domain.Market]decimal.Decimal, len(m))
	for k, v := range m {
		fm[k] = dec(v)
	}
	ft, err := domain.NewFeeTable(fm, domain.DefaultFeeFraction)
	if err != nil {
		t.Fatalf("NewFeeTable: %v", err)
	}
	return ft
}

func TestDetectSingleBuyCandidate(t *testing.T) {
	d := NewDetector(nil, nil)
	listings := []domain.MarketListing{l("A", "100"), l("B", "120"), l("C", "90")}
	got := d.Detect("item", listings, fees(t, map[domain.Market]string{"B": "0.10"}))

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1: %+v", len(got), got)
	}
	o := got[0]
	if o.BuyMarket != "C" || o.SellMarket != "B" {
		t.Errorf("pair = %s -> %s, want C -> B", o.BuyMarket, o.SellMarket)
	}
	if !o.NetSellProceeds.Equal(dec("108")) || !o.Profit.Equal(dec("18")) || !o.ROIPercent.Equal(dec("20")) {
		t.Errorf("net = %s profit = %s roi = %s, want 108 18 20", o.NetSellProceeds, o.Profit, o.ROIPercent)
	}
	if o.FeeDefaulted {
		t.Error("FeeDefaulted = true for B")
	}
	if o.Item != "item" {
		t.Errorf("Item = %q", o.Item)
	}
}

func TestDetectFewerThanTwo(t *testing.T) {
	for _, p := range []Pairing{CheapestBuy{}, Pairwise{}} {
		d := NewDetector(p, nil)
		for _, in := range [][]domain.MarketListing{nil, {l("A", "5")}} {
			if got := d.Detect("item", in, domain.ReferenceFees()); len(got) != 0 {
				t.Errorf("%s: Detect(%v) = %v, want empty", p.Name(), in, got)
			}
		}
	}
}

func TestDetectDefaultFee(t *testing.T) {
	d := NewDetector(CheapestBuy{}, nil)
	got := d.Detect("item", []domain.MarketListing{l("A", "10"), l("Z", "20")}, fees(t, nil))
	if len(got) != 1 || !got[0].FeeDefaulted || !got[0].SellFee.Equal(dec("0.10")) {
		t.Fatalf("got %+v, want one opportunity using default fee", got)
	}
	if !got[0].Profit.Equal(dec("8")) {
		t.Errorf("Profit = %s, want 8", got[0].Profit)
	}
}

func TestDetectZeroBuyPriceExcluded(t *testing.T) {
	d := NewDetector(CheapestBuy{}, nil)
	got := d.Detect("item", []domain.MarketListing{l("A", "0"), l("B", "50")}, fees(t, nil))
	if len(got) != 0 {
		t.Errorf("got %+v, want none for zero buy price", got)
	}
}

func TestDetectTieBreakFirstSeen(t *testing.T) {
	d := NewDetector(CheapestBuy{}, nil)
	got := d.Detect("item", []domain.MarketListing{l("A", "10"), l("B", "10"), l("C", "20")}, fees(t, map[domain.Market]string{"A": "0", "B": "0", "C": "0"}))
	if len(got) != 1 || got[0].BuyMarket != "A" || got[0].SellMarket != "C" {
		t.Errorf("got %+v, want single A -> C", got)
	}
}

func TestDetectInvariants(t *testing.T) {
	inputs := [][]domain.MarketListing{
		{l("A", "100"), l("B", "120"), l("C", "90")},
		{l("A", "5"), l("B", "5"), l("C", "5")},
		{l("A", "1"), l("B", "100"), l("C", "50"), l("D", "1.2")},
		{l("A", "10"), l("A", "30")},
	}
	for _, p := range []Pairing{CheapestBuy{}, Pairwise{}} {
		d := NewDetector(p, nil)
		for _, in := range inputs {
			for _, o := range d.Detect("item", in, domain.ReferenceFees()) {
				if !o.Profit.IsPositive() {
					t.Errorf("%s: profit %s not > 0", p.Name(), o.Profit)
				}
				if o.BuyMarket == o.SellMarket {
					t.Errorf("%s: buy and sell market both %s", p.Name(), o.BuyMarket)
				}
			}
		}
	}
}

func TestPairwiseFindsMoreThanCheapest(t *testing.T) {
	ft := fees(t, map[domain.Market]string{"A": "0", "B": "0", "C": "0"})
	listings := []domain.MarketListing{l("A", "10"), l("B", "20"), l("C", "30")}

	cheap := NewDetector(CheapestBuy{}, nil).Detect("item", listings, ft)
	all := NewDetector(Pairwise{}, nil).Detect("item", listings, ft)
	if len(cheap) != 2 {
		t.Errorf("cheapest: len = %d, want 2", len(cheap))
	}
	if len(all) != 3 {
		t.Fatalf("pairwise: len = %d, want 3", len(all))
	}
	found := false
	for _, o := range all {
		if o.BuyMarket == "B" && o.SellMarket == "C" {
			found = true
		}
	}
	if !found {
		t.Error("pairwise missing B -> C")
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	names := r.List()
	if len(names) != 2 || names[0] != CheapestBuyName || names[1] != PairwiseName {
		t.Errorf("List() = %v", names)
	}
	if _, err := r.Get("nope"); err == nil {
		t.Error("Get(nope) err = nil")
	}
	p, err := r.Get(PairwiseName)
	if err != nil || p.Name() != PairwiseName {
		t.Errorf("Get(pairwise) = %v, %v", p, err)
	}
}

func TestDetectIsRepeatable(t *testing.T) {
	ft := fees(t, map[domain.Market]string{"B": "0.10", "D": "0.02"})
	listings := []domain.MarketListing{l("A", "100"), l("B", "120"), l("C", "90"), l("D", "110")}

	for _, p := range []Pairing{CheapestBuy{}, Pairwise{}} {
		t.Run(p.Name(), func(t *testing.T) {
			before := slices.Clone(listings)
			d := NewDetector(p, nil)
			first := d.Detect("item", listings, ft)
			second := d.Detect("item", listings, ft)
			if !reflect.DeepEqual(first, second) {
				t.Errorf("second call differs:\n%+v\n%+v", first, second)
			}
			if !reflect.DeepEqual(listings, before) {
				t.Errorf("listings modified: %+v", listings)
			}
		})
	}
}
