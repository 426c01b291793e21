package fleet

import (
	"math"
	"testing"
)

func TestBreakdownChance_Bounds(t *testing.T) {
	if got := BreakdownChance(0, 5); got != 0 {
		t.Fatalf("zero rate must never fail, got %v", got)
	}
	if got := BreakdownChance(2, 0); got != 0 {
		t.Fatalf("zero elapsed time must never fail, got %v", got)
	}
	if got := BreakdownChance(-1, 1); got != 0 {
		t.Fatalf("negative rate must never fail, got %v", got)
	}
	if got := BreakdownChance(3, 1); got <= 0.9 || got >= 1 {
		t.Fatalf("heavy use should approach but not reach 1, got %v", got)
	}
}

func TestBreakdownChance_Monotonic(t *testing.T) {
	prev := 0.0
	for _, hours := range []float64{0.1, 0.5, 1, 2, 8} {
		got := BreakdownChance(0.3, hours)
		if got <= prev {
			t.Fatalf("chance not increasing: %v at %v hours after %v", got, hours, prev)
		}
		prev = got
	}
}

func TestBreakdownChance_PoissonIdentity(t *testing.T) {
	got := BreakdownChance(0.5, 2)
	want := 1 - math.Exp(-1)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("chance = %v, want %v", got, want)
	}
}

func TestEffectiveBreakdownRate(t *testing.T) {
	p := DefaultParams()
	if got := effectiveBreakdownRate(1, false, &p); math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("balanced rate = %v, want 0.2", got)
	}
	if got := effectiveBreakdownRate(1, true, &p); math.Abs(got-0.12) > 1e-12 {
		t.Fatalf("fleet-AI rate = %v, want 0.12", got)
	}
}
