package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// OpportunityStore persists detected arbitrage opportunities.
type OpportunityStore interface {
	Insert(ctx context.Context, opp ArbitrageOpportunity) error
	ListRecent(ctx context.Context, limit int) ([]ArbitrageOpportunity, error)
	ListByItem(ctx context.Context, item ItemID, opts ListOpts) ([]ArbitrageOpportunity, error)
}

// AlertStore persists triggered price alerts.
type AlertStore interface {
	Insert(ctx context.Context, alert Alert) error
	ListRecent(ctx context.Context, limit int) ([]Alert, error)
}

// TrendStore keeps the latest computed statistics per item and date range.
type TrendStore interface {
	Upsert(ctx context.Context, start, end Date, stats TrendStats) error
	Get(ctx context.Context, item ItemID, start, end Date) (TrendStats, error)
}

// AuditEntry is one row of the operational audit log.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// Audit events.
const (
	AuditArbScan        = "arb_scan"
	AuditAlertTriggered = "alert_triggered"
	AuditTrendArchived  = "trend_archived"
)

// AuditStore records operational events.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
