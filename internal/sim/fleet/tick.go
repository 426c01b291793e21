package fleet

import (
	"math"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/nav"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/urgency"
)

// TickInput carries everything one simulation step needs besides the fleet
// itself. Candidates live for this tick only.
type TickInput struct {
	Candidates    []WorkCandidate
	DeltaMinutes  float64
	FleetAIActive bool
	Rule          TraversalRule
	Rand          Rand
	Params        *Params
}

// TickResult is the immutable outcome of one step: the replacement fleet
// state, the work effects to apply to the terrain, and the operating cost to
// charge the economy.
type TickResult struct {
	State         State
	Effects       []RobotEffect
	OperatingCost float64
}

type tickEnv struct {
	candidates []WorkCandidate
	byCell     map[int64]int
	claims     *Claims
	station    nav.Vec2
	rule       TraversalRule
	rand       Rand
	p          *Params
	dt         float64
	fleetAI    bool
	cost       float64
}

// nopRand never triggers a breakdown; used when the caller injects nothing.
type nopRand struct{}

func (nopRand) Float64() float64 { return 1 }

// Tick advances every unit in roster order and returns a fresh state. The
// claim table is rebuilt at the top of each call and threaded through every
// per-unit step, so independent decisions compose into a collision-free
// allocation. Negative elapsed time is clamped to zero.
func Tick(s State, in TickInput) TickResult {
	p := DefaultParams()
	if in.Params != nil {
		p = *in.Params
		p.applyDefaults()
	}
	env := &tickEnv{
		candidates: in.Candidates,
		byCell:     make(map[int64]int, len(in.Candidates)),
		claims:     NewClaims(),
		station:    s.station(),
		rule:       in.Rule,
		rand:       in.Rand,
		p:          &p,
		dt:         math.Max(0, in.DeltaMinutes),
		fleetAI:    in.FleetAIActive,
	}
	if env.rule == nil {
		env.rule = func(RobotUnit, float64, float64) bool { return true }
	}
	if env.rand == nil {
		env.rand = nopRand{}
	}
	for i, c := range in.Candidates {
		key := nav.CellKey(c.X, c.Z)
		if _, ok := env.byCell[key]; !ok {
			env.byCell[key] = i
		}
	}

	out := s.clone()

	// Re-register surviving targets from the previous tick. Duplicate targets
	// can only come from external state edits; the later unit in roster order
	// loses and reverts to idle. The station cell is exempt because any number
	// of units may be heading in to charge.
	stationKey := nav.CellKey(env.station.X, env.station.Z)
	for i := range out.Robots {
		r := &out.Robots[i]
		if r.Target == nil {
			continue
		}
		if nav.CellKey(r.Target.X, r.Target.Z) == stationKey {
			continue
		}
		if env.claims.Claimed(r.Target.X, r.Target.Z) {
			r.clearTask()
			if r.State == StateMoving || r.State == StateWorking {
				r.State = StateIdle
			}
			continue
		}
		env.claims.Claim(r.Target.X, r.Target.Z)
	}

	var effects []RobotEffect
	for i := range out.Robots {
		if eff := stepUnit(&out.Robots[i], env); eff != nil {
			effects = append(effects, *eff)
		}
	}

	return TickResult{State: out, Effects: effects, OperatingCost: env.cost}
}

// stepUnit advances one unit through its state machine for this tick and
// returns its work effect, if any.
func stepUnit(r *RobotUnit, env *tickEnv) *RobotEffect {
	// Hourly burn accrues in every state, broken included.
	env.cost += r.Stats.OperatingCostPerHour * env.dt / 60

	if env.dt <= 0 {
		return nil
	}

	if r.State == StateBroken {
		r.BreakdownRemaining -= env.dt
		if r.BreakdownRemaining <= 0 {
			r.BreakdownRemaining = 0
			r.State = StateIdle
		}
		return nil
	}

	// One uniform draw per unit per tick decides mechanical failure.
	rate := effectiveBreakdownRate(r.Stats.BreakdownRate, env.fleetAI, env.p)
	if chance := BreakdownChance(rate, env.dt/60); chance > 0 && env.rand.Float64() < chance {
		releaseTarget(r, env)
		r.clearTask()
		r.State = StateBroken
		r.BreakdownRemaining = r.Stats.RepairMinutes
		if r.BreakdownRemaining <= 0 {
			r.BreakdownRemaining = env.p.RepairMinutes
		}
		return nil
	}

	if r.State == StateCharging {
		r.Resource = math.Min(r.ResourceMax, r.Resource+env.p.ChargeRatePerMinute*env.dt)
		if r.Resource >= env.p.ChargedFrac*r.ResourceMax {
			r.State = StateIdle
		}
		return nil
	}

	// Low resource overrides whatever the unit was doing.
	if r.LowResource(env.p) {
		stepToStation(r, env)
		return nil
	}

	switch r.State {
	case StateIdle:
		stepIdle(r, env)
	case StateMoving:
		stepMoving(r, env)
	case StateWorking:
		// Re-check below.
	}

	if r.State != StateWorking {
		consumeFuel(r, env)
		return nil
	}

	// Working: the cell must still need this unit's attention, otherwise a
	// colleague already treated it and we go idle.
	if !workRemains(r, env) {
		releaseTarget(r, env)
		r.clearTask()
		r.State = StateIdle
		return nil
	}
	consumeFuel(r, env)
	return &RobotEffect{
		Type:        r.Type,
		EquipmentID: r.ID,
		X:           r.X,
		Z:           r.Z,
		Efficiency:  r.Stats.Efficiency,
	}
}

func stepIdle(r *RobotUnit, env *tickEnv) {
	sel, ok := selectWork(r, env, nil)
	if ok {
		r.setTarget(sel.target)
		if sel.path == nil {
			r.State = StateWorking
			return
		}
		r.Path = sel.path
		r.PathIndex = 0
		r.State = StateMoving
		stepMoving(r, env)
		return
	}

	// Nothing reachable: drift to a parking slot near the station instead of
	// stacking on top of it. The unit stays idle while parking, and claims the
	// cell it actually holds at the end of the step so later units in the
	// roster never target its resting ground.
	slot := parkingSlot(env.station, *r, env.rule)
	if nav.Dist(r.Pos(), slot) > env.p.ArrivalTolerance {
		res := nav.AdvanceToward(r.Pos(), slot, r.Stats.Speed*env.dt, func(x, z float64) bool {
			return env.rule(*r, x, z)
		})
		r.X, r.Z = res.Pos.X, res.Pos.Z
	}
	env.claims.Claim(r.X, r.Z)
}

func stepMoving(r *RobotUnit, env *tickEnv) {
	if r.Target == nil {
		r.clearTask()
		r.State = StateIdle
		return
	}
	blocked, arrived := advanceAlong(r, env, r.Stats.Speed*env.dt)
	if blocked {
		// The claimed destination is unreachable mid-path: release it and look
		// for an alternate with the blocked cell excluded from this search.
		excluded := *r.Target
		releaseTarget(r, env)
		r.clearTask()
		sel, ok := selectWork(r, env, &excluded)
		if !ok {
			r.State = StateIdle
			return
		}
		r.setTarget(sel.target)
		if sel.path == nil {
			r.State = StateWorking
			return
		}
		r.Path = sel.path
		r.PathIndex = 0
		return
	}
	if arrived {
		r.Path = nil
		r.PathIndex = 0
		if workRemains(r, env) {
			r.State = StateWorking
			return
		}
		releaseTarget(r, env)
		r.clearTask()
		r.State = StateIdle
	}
}

// stepToStation drives a low-resource unit home, reusing an existing path when
// it already leads to the station and falling back to direct movement when the
// grid path is blocked.
func stepToStation(r *RobotUnit, env *tickEnv) {
	if r.Target == nil || !nav.SameCell(*r.Target, env.station) {
		releaseTarget(r, env)
		r.clearTask()
		r.setTarget(env.station)
	}
	if nav.Dist(r.Pos(), env.station) <= env.p.ArrivalTolerance {
		r.clearTask()
		r.State = StateCharging
		return
	}
	canTraverse := func(x, z float64) bool { return env.rule(*r, x, z) }
	if r.Path == nil {
		r.Path = nav.FindPath(r.Pos(), env.station, canTraverse, 1, env.p.MaxPathNodes)
		r.PathIndex = 0
	}
	r.State = StateMoving
	blocked, arrived := advanceAlong(r, env, r.Stats.Speed*env.dt)
	if blocked && r.Path != nil {
		// Discard the stale path and inch directly toward the station.
		r.Path = nil
		r.PathIndex = 0
		res := nav.AdvanceToward(r.Pos(), env.station, r.Stats.Speed*env.dt, canTraverse)
		r.X, r.Z = res.Pos.X, res.Pos.Z
		arrived = res.Arrived
	}
	if arrived || nav.Dist(r.Pos(), env.station) <= env.p.ArrivalTolerance {
		r.clearTask()
		r.State = StateCharging
	}
	consumeFuel(r, env)
}

// advanceAlong spends the tick's movement budget walking the unit's path (or
// straight at its target when no path exists).
func advanceAlong(r *RobotUnit, env *tickEnv, budget float64) (blocked, arrived bool) {
	canTraverse := func(x, z float64) bool { return env.rule(*r, x, z) }
	for budget > nav.ArrivalEpsilon {
		var waypoint nav.Vec2
		onPath := r.Path != nil && r.PathIndex < len(r.Path)
		switch {
		case onPath:
			waypoint = r.Path[r.PathIndex]
		case r.Target != nil:
			waypoint = *r.Target
		default:
			return false, false
		}

		// The leg's destination itself going untraversable (rule changed under
		// us) counts as blocked without burning the movement budget.
		if !canTraverse(waypoint.X, waypoint.Z) {
			return true, false
		}

		res := nav.AdvanceToward(r.Pos(), waypoint, budget, canTraverse)
		r.X, r.Z = res.Pos.X, res.Pos.Z
		if res.Blocked {
			return true, false
		}
		if !res.Arrived {
			return false, false // budget exhausted mid-leg
		}
		budget -= res.DistanceMoved
		if onPath && r.PathIndex < len(r.Path)-1 {
			r.PathIndex++
			continue
		}
		return false, true
	}
	return false, false
}

func selectWork(r *RobotUnit, env *tickEnv, exclude *nav.Vec2) (selection, bool) {
	if exclude != nil {
		env.claims.Claim(exclude.X, exclude.Z)
	}
	ranked := rankCandidates(*r, env.candidates, env.claims, env.p)
	return resolveTarget(*r, ranked, env.claims, env.rule, env.p)
}

// workRemains re-checks the patch the unit was sent to and its urgency. The
// lookup keys off the unit's target, not its own cell: a unit can legitimately
// stand one cell over from the patch centroid (the arrival tolerance spans
// cell boundaries), and restricted units travel to the projected sub-centroid,
// which need not share a cell with the centroid the index is keyed by.
func workRemains(r *RobotUnit, env *tickEnv) bool {
	at := r.Pos()
	if r.Target != nil {
		at = *r.Target
	}

	if len(r.Stats.AllowedTerrain) > 0 {
		for _, cand := range env.candidates {
			if urgency.WaterOnly(cand) {
				continue
			}
			proj, ok := urgency.Project(cand, r.Stats.AllowedTerrain)
			if !ok || !nav.SameCell(nav.Vec2{X: proj.X, Z: proj.Z}, at) {
				continue
			}
			return urgency.Score(r.Type, proj, env.p.CutHeight) >= urgency.MinActionable
		}
		return false
	}

	idx, ok := env.byCell[nav.CellKey(at.X, at.Z)]
	if !ok {
		return false
	}
	cand := env.candidates[idx]
	if urgency.WaterOnly(cand) {
		return false
	}
	return urgency.Score(r.Type, cand, env.p.CutHeight) >= urgency.MinActionable
}

func releaseTarget(r *RobotUnit, env *tickEnv) {
	if r.Target == nil {
		return
	}
	if nav.SameCell(*r.Target, env.station) {
		return
	}
	env.claims.Release(r.Target.X, r.Target.Z)
}

func consumeFuel(r *RobotUnit, env *tickEnv) {
	if r.State != StateMoving && r.State != StateWorking {
		return
	}
	r.Resource = math.Max(0, r.Resource-r.Stats.FuelEfficiency*env.dt*env.p.FuelBurnFactor)
}
