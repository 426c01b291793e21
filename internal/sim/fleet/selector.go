package fleet

import (
	"sort"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/nav"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/urgency"
)

// rankedCandidate is one scored work option for a specific unit.
type rankedCandidate struct {
	target   nav.Vec2
	urgency  float64
	distance float64
	score    float64
	extreme  bool
}

// selection is the outcome of resolveTarget: a claimed destination plus the
// planned path (nil when the unit is already standing on the target cell).
type selection struct {
	target nav.Vec2
	path   []nav.Vec2
}

// rankCandidates filters and orders the per-tick work snapshot for one unit.
// Water-only patches are dropped, restricted units are re-projected onto their
// allowed codes, sub-actionable urgency is discarded, and already claimed
// cells are skipped. Extreme-urgency candidates form a separate pool that
// takes absolute priority, ordered by urgency then distance; the normal pool
// is ordered by distance-discounted urgency. Both pools are capped to bound
// per-tick cost.
func rankCandidates(unit RobotUnit, candidates []WorkCandidate, claims *Claims, p *Params) []rankedCandidate {
	var normal, extreme []rankedCandidate
	for _, c := range candidates {
		if urgency.WaterOnly(c) {
			continue
		}
		cand := c
		if len(unit.Stats.AllowedTerrain) > 0 {
			proj, ok := urgency.Project(c, unit.Stats.AllowedTerrain)
			if !ok {
				continue
			}
			cand = proj
		}
		u := urgency.Score(unit.Type, cand, p.CutHeight)
		if u < urgency.MinActionable {
			continue
		}
		if claims.Claimed(cand.X, cand.Z) {
			continue
		}
		dist := nav.Dist(unit.Pos(), nav.Vec2{X: cand.X, Z: cand.Z})
		rc := rankedCandidate{
			target:   nav.Vec2{X: cand.X, Z: cand.Z},
			urgency:  u,
			distance: dist,
			score:    u / (1 + dist/p.DistanceDiscount),
			extreme:  u >= p.ExtremeUrgency,
		}
		if rc.extreme {
			extreme = append(extreme, rc)
		} else {
			normal = append(normal, rc)
		}
	}

	sort.SliceStable(extreme, func(i, j int) bool {
		if extreme[i].urgency != extreme[j].urgency {
			return extreme[i].urgency > extreme[j].urgency
		}
		return extreme[i].distance < extreme[j].distance
	})
	sort.SliceStable(normal, func(i, j int) bool {
		return normal[i].score > normal[j].score
	})

	if len(extreme) > p.MaxRanked {
		extreme = extreme[:p.MaxRanked]
	}
	if len(normal) > p.MaxRanked {
		normal = normal[:p.MaxRanked]
	}
	return append(extreme, normal...)
}

// resolveTarget walks the ranked list and returns the first candidate with a
// feasible path, claiming its cell. Long-range candidates are planned on a
// coarser grid to bound search cost. Returns false when no ranked candidate
// is reachable this tick.
func resolveTarget(unit RobotUnit, ranked []rankedCandidate, claims *Claims, rule TraversalRule, p *Params) (selection, bool) {
	canTraverse := func(x, z float64) bool { return rule(unit, x, z) }
	for _, rc := range ranked {
		if rc.distance <= p.ArrivalTolerance {
			claims.Claim(rc.target.X, rc.target.Z)
			return selection{target: rc.target}, true
		}
		gridStep := 1.0
		if rc.distance > p.LongRangeDistance {
			gridStep = p.LongRangeGridStep
		}
		path := nav.FindPath(unit.Pos(), rc.target, canTraverse, gridStep, p.MaxPathNodes)
		if path == nil {
			continue
		}
		claims.Claim(rc.target.X, rc.target.Z)
		return selection{target: rc.target, path: path}, true
	}
	return selection{}, false
}
