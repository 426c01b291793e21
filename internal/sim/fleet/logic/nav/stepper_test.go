package nav

import (
	"math"
	"testing"
)

func TestAdvanceToward_DirectArrival(t *testing.T) {
	res := AdvanceToward(Vec2{}, Vec2{X: 1, Z: 0}, 2, open)
	if !res.Arrived {
		t.Fatalf("expected arrival, got %+v", res)
	}
	if res.Pos != (Vec2{X: 1, Z: 0}) {
		t.Fatalf("expected exact snap onto target, got %+v", res.Pos)
	}
	if !res.Moved || res.DistanceMoved < 0.99 || res.DistanceMoved > 1.01 {
		t.Fatalf("distance moved = %v, want ~1", res.DistanceMoved)
	}
}

func TestAdvanceToward_BudgetLimits(t *testing.T) {
	res := AdvanceToward(Vec2{}, Vec2{X: 10, Z: 0}, 1, open)
	if res.Arrived {
		t.Fatalf("should not arrive with budget 1")
	}
	if d := Dist(Vec2{}, res.Pos); d > 1.0001 {
		t.Fatalf("moved %v, budget was 1", d)
	}
	if res.Pos.X <= 0.9 {
		t.Fatalf("expected nearly the whole budget spent toward +x, got %+v", res.Pos)
	}
}

func TestAdvanceToward_DeviatesAroundObstacle(t *testing.T) {
	// A disc of radius 1 sits between the unit and its target.
	center := Vec2{X: 3, Z: 0}
	rule := func(x, z float64) bool {
		return Dist(Vec2{X: x, Z: z}, center) > 1
	}
	start := Vec2{X: 0, Z: 0}
	target := Vec2{X: 6, Z: 0}
	pos := start
	for i := 0; i < 20; i++ {
		res := AdvanceToward(pos, target, 1, rule)
		if res.Blocked {
			t.Fatalf("stepper reported blocked in open terrain at %+v", pos)
		}
		pos = res.Pos
		if res.Arrived {
			break
		}
	}
	if Dist(pos, target) > ArrivalEpsilon {
		t.Fatalf("never reached target, stuck at %+v", pos)
	}
}

func TestAdvanceToward_BlockedWhenEnclosed(t *testing.T) {
	start := Vec2{X: 3, Z: 0}
	rule := func(x, z float64) bool {
		return Dist(Vec2{X: x, Z: z}, start) < 0.1
	}
	res := AdvanceToward(start, Vec2{X: 6, Z: 0}, 2, rule)
	if !res.Blocked {
		t.Fatalf("expected blocked, got %+v", res)
	}
	if res.Pos != start || res.Moved {
		t.Fatalf("blocked step must not move the unit, got %+v", res)
	}
}

func TestAdvanceToward_EscapesBlockedCell(t *testing.T) {
	// The unit stands inside an obstacle; only ground at least 0.4 away is
	// traversable, which the 0.5 escape hop can reach.
	origin := Vec2{}
	rule := func(x, z float64) bool {
		return Dist(Vec2{X: x, Z: z}, origin) >= 0.4
	}
	res := AdvanceToward(origin, Vec2{X: 3, Z: 0}, 1, rule)
	if res.Blocked || !res.Moved {
		t.Fatalf("expected escape hop, got %+v", res)
	}
	if !rule(res.Pos.X, res.Pos.Z) {
		t.Fatalf("escape landed on blocked ground at %+v", res.Pos)
	}
}

func TestAdvanceToward_ZeroBudget(t *testing.T) {
	res := AdvanceToward(Vec2{X: 1, Z: 1}, Vec2{X: 5, Z: 5}, 0, open)
	if res.Moved || res.Arrived || res.Blocked {
		t.Fatalf("zero budget must be a no-op, got %+v", res)
	}
	if res.Pos != (Vec2{X: 1, Z: 1}) {
		t.Fatalf("position changed on zero budget: %+v", res.Pos)
	}
}

func TestCellKey_DistinguishesNegatives(t *testing.T) {
	keys := map[int64]bool{}
	for _, p := range []Vec2{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}, {0, 0}} {
		k := CellKey(p.X, p.Z)
		if keys[k] {
			t.Fatalf("duplicate cell key for %+v", p)
		}
		keys[k] = true
	}
	if CellKey(2.9, 3.9) != CellKey(2.1, 3.1) {
		t.Fatalf("positions in the same cell must share a key")
	}
	if math.Signbit(float64(CellKey(1, 1))) {
		t.Fatalf("positive cells should pack to a positive key")
	}
}
