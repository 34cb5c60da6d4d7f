package logger

import (
	"testing"

	"golang.org/x/time/rate"
)

func TestDiscardDoesNothing(t *testing.T) {
	Discard("anything %d", 1)
}

func TestRateLimitedInfiniteRateNeverDrops(t *testing.T) {
	calls := 0
	logf := func(format string, args ...any) { calls++ }

	lim := rate.NewLimiter(rate.Inf, 0)
	limited := RateLimited(logf, lim)
	for i := 0; i < 5; i++ {
		limited("line %d", i)
	}
	if calls != 5 {
		t.Fatalf("rate.Inf should never drop, got %d calls", calls)
	}
}

func TestRateLimitedDropsOverBurst(t *testing.T) {
	calls := 0
	logf := func(format string, args ...any) { calls++ }

	lim := rate.NewLimiter(rate.Every(1e9), 1)
	limited := RateLimited(logf, lim)
	for i := 0; i < 5; i++ {
		limited("line %d", i)
	}
	if calls != 1 {
		t.Fatalf("expected only the initial burst of 1 to pass, got %d", calls)
	}
}

func TestRateLimitedNilLogfDoesNotPanic(t *testing.T) {
	lim := rate.NewLimiter(rate.Inf, 1)
	limited := RateLimited(nil, lim)
	limited("line")
}
