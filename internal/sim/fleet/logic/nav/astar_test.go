package nav

import (
	"math"
	"testing"
)

func open(_, _ float64) bool { return true }

func blockedCells(cells ...[2]int) CanTraverse {
	set := map[[2]int]bool{}
	for _, c := range cells {
		set[c] = true
	}
	return func(x, z float64) bool {
		return !set[[2]int{int(math.Round(x)), int(math.Round(z))}]
	}
}

func TestFindPath_OpenField(t *testing.T) {
	start := Vec2{X: 0, Z: 0}
	goal := Vec2{X: 5.3, Z: 0.2}
	path := FindPath(start, goal, open, 1, 0)
	if path == nil {
		t.Fatalf("expected a path")
	}
	last := path[len(path)-1]
	if last != goal {
		t.Fatalf("last waypoint = %+v, want exact goal %+v", last, goal)
	}
}

func TestFindPath_SameCellReturnsExactGoal(t *testing.T) {
	goal := Vec2{X: 0.3, Z: 0.4}
	path := FindPath(Vec2{X: 0.1, Z: 0.1}, goal, open, 1, 0)
	if len(path) != 1 || path[0] != goal {
		t.Fatalf("path = %+v, want single exact-goal waypoint", path)
	}
}

func TestFindPath_NoPath(t *testing.T) {
	// Goal fully walled in.
	rule := blockedCells(
		[2]int{4, -1}, [2]int{4, 0}, [2]int{4, 1},
		[2]int{5, -1}, [2]int{5, 1},
		[2]int{6, -1}, [2]int{6, 0}, [2]int{6, 1},
	)
	if path := FindPath(Vec2{}, Vec2{X: 5, Z: 0}, rule, 1, 0); path != nil {
		t.Fatalf("expected no path, got %+v", path)
	}
}

func TestFindPath_MaxNodesDegradesToNoPath(t *testing.T) {
	if path := FindPath(Vec2{}, Vec2{X: 500, Z: 500}, open, 1, 10); path != nil {
		t.Fatalf("expected node budget to exhaust, got %d waypoints", len(path))
	}
}

func TestFindPath_NoCornerCutting(t *testing.T) {
	// (1,0) and (0,1) are walls; the diagonal through them must be refused
	// even though (1,1) itself is free.
	rule := blockedCells([2]int{1, 0}, [2]int{0, 1})
	path := FindPath(Vec2{}, Vec2{X: 2, Z: 2}, rule, 1, 0)
	if path == nil {
		t.Fatalf("expected a detour path")
	}
	prev := Vec2{}
	for _, wp := range path {
		if math.Abs(wp.X-prev.X) > 1.01 || math.Abs(wp.Z-prev.Z) > 1.01 {
			t.Fatalf("step %+v -> %+v exceeds one grid cell", prev, wp)
		}
		if int(math.Round(wp.X)) == 1 && int(math.Round(wp.Z)) == 1 && int(math.Round(prev.X)) == 0 && int(math.Round(prev.Z)) == 0 {
			t.Fatalf("path cut the corner between two walls: %+v -> %+v", prev, wp)
		}
		prev = wp
	}
}

func TestFindPath_EveryStepTraversable(t *testing.T) {
	rule := blockedCells(
		[2]int{3, -2}, [2]int{3, -1}, [2]int{3, 0}, [2]int{3, 1}, [2]int{3, 2},
	)
	start := Vec2{X: 0, Z: 0}
	goal := Vec2{X: 6, Z: 0}
	path := FindPath(start, goal, rule, 1, 0)
	if path == nil {
		t.Fatalf("expected a path around the wall")
	}
	for i, wp := range path {
		if i == len(path)-1 {
			// Final waypoint is the exact goal, which sits on a free cell.
			if wp != goal {
				t.Fatalf("final waypoint %+v != goal %+v", wp, goal)
			}
		}
		if !rule(wp.X, wp.Z) {
			t.Fatalf("waypoint %d at %+v is not traversable", i, wp)
		}
	}
}

func TestFindPath_CoarseGridStep(t *testing.T) {
	goal := Vec2{X: 40, Z: 0}
	path := FindPath(Vec2{}, goal, open, 2, 0)
	if path == nil {
		t.Fatalf("expected a path")
	}
	if got := path[len(path)-1]; got != goal {
		t.Fatalf("final waypoint %+v != exact goal %+v", got, goal)
	}
	if len(path) > 21 {
		t.Fatalf("coarse path unexpectedly long: %d waypoints", len(path))
	}
}
