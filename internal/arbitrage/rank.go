package arbitrage

import (
	"fmt"
	"sort"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// RankBy selects the ordering key for Rank.
type RankBy string

const (
	RankByROI    RankBy = "roi"
	RankByProfit RankBy = "profit"
)

// ParseRankBy validates a configured ranking key. Empty means RankByROI.
func ParseRankBy(s string) (RankBy, error) {
	switch RankBy(s) {
	case "", RankByROI:
		return RankByROI, nil
	case RankByProfit:
		return RankByProfit, nil
	}
	return "", fmt.Errorf("arbitrage: unknown rank key %q (valid: roi, profit)", s)
}

// Rank returns a copy of opps sorted descending by key, keeping detection
// order among equals, truncated to topN when topN > 0.
func Rank(opps []domain.ArbitrageOpportunity, by RankBy, topN int) []domain.ArbitrageOpportunity {
	out := make([]domain.ArbitrageOpportunity, len(opps))
	copy(out, opps)
	sort.SliceStable(out, func(i, j int) bool {
		if by == RankByProfit {
			return out[i].Profit.GreaterThan(out[j].Profit)
		}
		return out[i].ROIPercent.GreaterThan(out[j].ROIPercent)
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
