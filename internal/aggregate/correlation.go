package aggregate

import "github.com/alanyoungcy/skinscout/internal/domain"

// JoinPlayerCounts lines up each day with the player count sampled on the
// same date. Days without a sample get a nil Players.
func JoinPlayerCounts(days []domain.DayStat, samples []domain.PlayerCountSample) []domain.CorrelationRow {
	byDay := make(map[domain.Date]int64, len(samples))
	for _, s := range samples {
		byDay[s.Day] = s.Count
	}
	rows := make([]domain.CorrelationRow, len(days))
	for i, d := range days {
		rows[i] = domain.CorrelationRow{Day: d.Day, Volume: d.Volume, AveragePrice: d.AveragePrice}
		if c, ok := byDay[d.Day]; ok {
			rows[i].Players = &c
		}
	}
	return rows
}
