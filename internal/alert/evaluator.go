// Package alert compares current lowest prices against buy targets.
package alert

import "github.com/alanyoungcy/skinscout/internal/domain"

// Evaluation is the outcome of one pass over a target list.
type Evaluation struct {
	// Alerts are in target order.
	Alerts []domain.Alert
	// Skipped lists targets with no listing data.
	Skipped []domain.ItemID
}

// Evaluate emits an alert for every target whose item's lowest listing is at
// or below the target price. ID and TriggeredAt are left unset.
func Evaluate(targets []domain.PriceTarget, lowest map[domain.ItemID]domain.MarketListing) Evaluation {
	var ev Evaluation
	for _, t := range targets {
		cur, ok := lowest[t.Item]
		if !ok {
			ev.Skipped = append(ev.Skipped, t.Item)
			continue
		}
		if cur.MinPrice.GreaterThan(t.Price) {
			continue
		}
		ev.Alerts = append(ev.Alerts, domain.Alert{
			Item:           t.Item,
			Market:         cur.Market,
			TriggeredPrice: cur.MinPrice,
			TargetPrice:    t.Price,
			Savings:        t.Price.Sub(cur.MinPrice),
		})
	}
	return ev
}
