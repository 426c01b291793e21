package fleet

import (
	"testing"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/nav"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/urgency"
)

func overgrown(x, z, avg, max float64) WorkCandidate {
	return WorkCandidate{
		X: x, Z: z,
		Height:   urgency.Stat{Avg: avg, Min: avg, Max: max},
		Dominant: urgency.TerrainFairway,
	}
}

func openRule(RobotUnit, float64, float64) bool { return true }

func TestRankCandidates_FiltersAndOrders(t *testing.T) {
	p := DefaultParams()
	unit := RobotUnit{Type: TypeMower, X: 0, Z: 0}
	claims := NewClaims()
	claims.Claim(10, 10)

	candidates := []WorkCandidate{
		overgrown(10, 10, 45, 50),   // claimed, dropped
		overgrown(30, 0, 40, 45),    // normal, far
		overgrown(5, 0, 40, 45),     // normal, near
		overgrown(50, 0, 110, 120),  // extreme
		overgrown(2, 0, 30.5, 30.5), // below actionable floor
		{X: 7, Z: 7, Dominant: urgency.TerrainWater}, // water only
	}
	ranked := rankCandidates(unit, candidates, claims, &p)
	if len(ranked) != 3 {
		t.Fatalf("ranked %d candidates, want 3: %+v", len(ranked), ranked)
	}
	if !ranked[0].extreme || ranked[0].target != (nav.Vec2{X: 50, Z: 0}) {
		t.Fatalf("extreme candidate must lead despite its distance, got %+v", ranked[0])
	}
	if ranked[1].target != (nav.Vec2{X: 5, Z: 0}) {
		t.Fatalf("nearer normal candidate should outrank the far one, got %+v", ranked[1])
	}
}

func TestRankCandidates_ExtremeOrderedByUrgencyThenDistance(t *testing.T) {
	p := DefaultParams()
	unit := RobotUnit{Type: TypeMower, X: 0, Z: 0}
	candidates := []WorkCandidate{
		overgrown(40, 0, 120, 130),
		overgrown(4, 0, 120, 130),
		overgrown(2, 0, 150, 160),
	}
	ranked := rankCandidates(unit, candidates, NewClaims(), &p)
	if len(ranked) != 3 {
		t.Fatalf("ranked %d, want 3", len(ranked))
	}
	if ranked[0].target != (nav.Vec2{X: 2, Z: 0}) {
		t.Fatalf("highest urgency must lead, got %+v", ranked[0])
	}
	if ranked[1].target != (nav.Vec2{X: 4, Z: 0}) {
		t.Fatalf("equal urgency must break ties by distance, got %+v", ranked[1])
	}
}

func TestRankCandidates_CapsEachPool(t *testing.T) {
	p := DefaultParams()
	p.MaxRanked = 2
	unit := RobotUnit{Type: TypeMower, X: 0, Z: 0}
	var candidates []WorkCandidate
	for i := 0; i < 6; i++ {
		candidates = append(candidates, overgrown(float64(3+i*2), 0, 40, 45))
		candidates = append(candidates, overgrown(float64(3+i*2), 10, 120, 130))
	}
	ranked := rankCandidates(unit, candidates, NewClaims(), &p)
	if len(ranked) != 4 {
		t.Fatalf("ranked %d, want capped 2+2", len(ranked))
	}
}

func TestRankCandidates_RestrictedTerrainProjects(t *testing.T) {
	p := DefaultParams()
	unit := RobotUnit{Type: TypeMower, X: 0, Z: 0}
	unit.Stats.AllowedTerrain = []string{urgency.TerrainGreen}

	mixed := WorkCandidate{
		X: 10, Z: 0,
		Height:   urgency.Stat{Avg: 80, Min: 60, Max: 90},
		Dominant: urgency.TerrainRough,
		ByTerrain: map[string]urgency.SubPatch{
			urgency.TerrainRough: {X: 11, Z: 0, Weight: 0.9, Height: urgency.Stat{Avg: 85, Min: 70, Max: 90}},
			urgency.TerrainGreen: {X: 8, Z: 0, Weight: 0.1, Height: urgency.Stat{Avg: 29, Min: 28, Max: 29.5}},
		},
	}
	roughOnly := WorkCandidate{
		X: 5, Z: 0,
		Height:   urgency.Stat{Avg: 85, Min: 70, Max: 90},
		Dominant: urgency.TerrainRough,
		ByTerrain: map[string]urgency.SubPatch{
			urgency.TerrainRough: {X: 5, Z: 0, Weight: 1, Height: urgency.Stat{Avg: 85, Min: 70, Max: 90}},
		},
	}
	ranked := rankCandidates(unit, []WorkCandidate{mixed, roughOnly}, NewClaims(), &p)
	// The green slice of the mixed patch is already trimmed and the other patch
	// carries no green at all, so a greens-only unit sees nothing.
	if len(ranked) != 0 {
		t.Fatalf("restricted unit ranked %d candidates, want 0: %+v", len(ranked), ranked)
	}
}

func TestResolveTarget_AdjacentNeedsNoPath(t *testing.T) {
	p := DefaultParams()
	unit := RobotUnit{Type: TypeMower, X: 5.1, Z: 5.1}
	claims := NewClaims()
	ranked := []rankedCandidate{{target: nav.Vec2{X: 5.3, Z: 5.2}, distance: 0.3}}
	sel, ok := resolveTarget(unit, ranked, claims, openRule, &p)
	if !ok || sel.path != nil {
		t.Fatalf("adjacent target should resolve without a path, got %+v ok=%v", sel, ok)
	}
	if !claims.Claimed(5.3, 5.2) {
		t.Fatalf("resolved target was not claimed")
	}
}

func TestResolveTarget_SkipsUnreachable(t *testing.T) {
	p := DefaultParams()
	unit := RobotUnit{Type: TypeMower, X: 0, Z: 0}
	// The near candidate sits inside a closed-off region.
	rule := func(_ RobotUnit, x, z float64) bool {
		if x >= 4 && x <= 8 && z >= -2 && z <= 2 {
			return x == 6 && z == 0
		}
		return true
	}
	ranked := []rankedCandidate{
		{target: nav.Vec2{X: 6, Z: 0}, distance: 6},
		{target: nav.Vec2{X: 0, Z: 6}, distance: 6},
	}
	claims := NewClaims()
	sel, ok := resolveTarget(unit, ranked, claims, rule, &p)
	if !ok {
		t.Fatalf("expected the reachable fallback to resolve")
	}
	if sel.target != (nav.Vec2{X: 0, Z: 6}) {
		t.Fatalf("resolved %+v, want the reachable candidate", sel.target)
	}
	if claims.Claimed(6, 0) {
		t.Fatalf("unreachable candidate must not stay claimed")
	}
}

func TestResolveTarget_NothingReachable(t *testing.T) {
	p := DefaultParams()
	unit := RobotUnit{Type: TypeMower, X: 0, Z: 0}
	rule := func(_ RobotUnit, x, z float64) bool { return x < 2 }
	ranked := []rankedCandidate{{target: nav.Vec2{X: 9, Z: 0}, distance: 9}}
	if _, ok := resolveTarget(unit, ranked, NewClaims(), rule, &p); ok {
		t.Fatalf("walled-off candidate should not resolve")
	}
}
