package local

import (
	"context"
	"testing"
	"time"
)

func TestSignalBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := NewSignalBus()

	exact, err := bus.Subscribe(ctx, "skinscout:arb")
	if err != nil {
		t.Fatal(err)
	}
	all, err := bus.Subscribe(ctx, "skinscout:*")
	if err != nil {
		t.Fatal(err)
	}

	_ = bus.Publish(ctx, "skinscout:alerts", []byte("a"))
	_ = bus.Publish(ctx, "skinscout:arb", []byte("b"))

	if got := string(<-exact); got != "b" {
		t.Errorf("exact got %q", got)
	}
	if got := string(<-all) + string(<-all); got != "ab" {
		t.Errorf("pattern got %q", got)
	}

	cancel()
	select {
	case _, open := <-exact:
		if open {
			t.Error("unexpected message after cancel")
		}
	case <-time.After(time.Second):
		t.Error("subscription not closed on cancel")
	}
}

func TestSignalBusBadPattern(t *testing.T) {
	if _, err := NewSignalBus().Subscribe(context.Background(), "["); err == nil {
		t.Error("bad pattern accepted")
	}
}
