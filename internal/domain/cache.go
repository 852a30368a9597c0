package domain

import (
	"context"
	"time"
)

// ListingCache keeps the most recent normalized listings per item.
type ListingCache interface {
	Set(ctx context.Context, item ItemID, snap ListingSnapshot) error
	Get(ctx context.Context, item ItemID) (ListingSnapshot, error)
}

// LockManager provides distributed locking.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// SignalBus provides pub/sub fan-out of scan results.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// Signal bus channels.
const (
	ChannelAlerts    = "skinscout:alerts"
	ChannelArbitrage = "skinscout:arb"
)
