package notify

import (
	"fmt"
	"strings"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// FormatAlert renders a triggered price alert.
func FormatAlert(a domain.Alert) (title, message string) {
	title = "Price alert: " + string(a.Item)
	message = fmt.Sprintf("%s at %s (target %s, saving %s)",
		a.Market, a.TriggeredPrice.StringFixed(2), a.TargetPrice.StringFixed(2), a.Savings.StringFixed(2))
	return title, message
}

// FormatOpportunity renders one arbitrage opportunity.
func FormatOpportunity(o domain.ArbitrageOpportunity) (title, message string) {
	title = "Arbitrage: " + string(o.Item)
	message = fmt.Sprintf("buy %s @ %s, sell %s @ %s (fee %s%%): profit %s, ROI %s%%",
		o.BuyMarket, o.BuyPrice.StringFixed(2),
		o.SellMarket, o.SellPrice.StringFixed(2),
		o.SellFee.Shift(2).StringFixed(1),
		o.Profit.StringFixed(2), o.ROIPercent.StringFixed(2))
	return title, message
}

// FormatOpportunities renders a ranked list under a single title.
func FormatOpportunities(item domain.ItemID, opps []domain.ArbitrageOpportunity) (title, message string) {
	title = fmt.Sprintf("Arbitrage: %s (%d)", item, len(opps))
	lines := make([]string, 0, len(opps))
	for i, o := range opps {
		_, m := FormatOpportunity(o)
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, m))
	}
	return title, strings.Join(lines, "\n")
}
