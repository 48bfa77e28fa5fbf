package ratelimit

import (
	"context"
	"testing"
	"time"

	"casinha/internal/bot"
)

func TestLimiter_Allow(t *testing.T) {
	rl := NewLimiter(Config{MessagesPerMinute: 60, Burst: 2})
	defer rl.Stop()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("burst should be allowed")
	}
	if rl.Allow("a") {
		t.Fatal("third message in the same instant should be limited")
	}
	if !rl.Allow("b") {
		t.Fatal("other keys have their own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("a") {
		t.Fatal("one token should refill after a second")
	}

	m := rl.GetMetrics()
	if m.TotalHits != 1 || m.ClientCount != 2 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	defer rl.Stop()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(11 * time.Minute)
	rl.Allow("new")
	rl.cleanupStaleEntries()

	if got := rl.ActiveClients(); got != 1 {
		t.Fatalf("ActiveClients() = %d, want 1", got)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl := NewLimiter(Config{MessagesPerMinute: 1, Burst: 1})
	defer rl.Stop()

	var handled, limited int
	next := func(context.Context, bot.Message) error { handled++; return nil }
	onLimit := func(context.Context, bot.Message) error { limited++; return nil }
	h := rl.Middleware(onLimit)(next)

	msg := bot.Message{ChatID: "c", UserID: "u", Text: "oi"}
	for i := 0; i < 3; i++ {
		if err := h(context.Background(), msg); err != nil {
			t.Fatalf("handler: %v", err)
		}
	}
	if handled != 1 || limited != 2 {
		t.Fatalf("handled=%d limited=%d, want 1 and 2", handled, limited)
	}

	if err := h(context.Background(), bot.Message{ChatID: "c", UserID: "other"}); err != nil {
		t.Fatal(err)
	}
	if handled != 2 {
		t.Fatalf("another user should not be limited, handled=%d", handled)
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
