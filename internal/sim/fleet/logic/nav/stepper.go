package nav

import "math"

const (
	// SampleStep is the increment the stepper moves per evaluation.
	SampleStep = 0.25

	// ArrivalEpsilon snaps a unit exactly onto its target.
	ArrivalEpsilon = 1e-6

	regressPenalty = 0.75
	headingPenalty = 0.003
)

// Heading offsets tried around the straight line to the target, in degrees.
// Order matters only for tie-breaking; the scored best candidate wins.
var headingOffsets = []float64{0, 25, -25, 50, -50, 75, -75, 110, -110, 145, -145, 180}

// Escape step lengths tried when the unit's own cell is untraversable.
var escapeSteps = []float64{0.5, 0.75, 1.0, 1.25}

// StepResult reports one AdvanceToward call.
type StepResult struct {
	Pos           Vec2
	Arrived       bool
	Blocked       bool
	Moved         bool
	DistanceMoved float64
}

// AdvanceToward moves from `from` toward `to` in SampleStep increments, up to
// maxDistance total. Each increment scores a fan of rotated headings plus two
// axis-aligned fallbacks and takes the traversable candidate that best closes
// the distance; moving away from the target and deviating from the straight
// heading are both penalized. A unit standing on a blocked cell first retries
// with progressively longer escape steps, then sweeps a full circle. When no
// traversable candidate exists the result reports Blocked and keeps whatever
// progress was already made this call.
func AdvanceToward(from, to Vec2, maxDistance float64, canTraverse CanTraverse) StepResult {
	res := StepResult{Pos: from}
	if maxDistance <= 0 {
		res.Arrived = Dist(from, to) <= ArrivalEpsilon
		if res.Arrived {
			res.Pos = to
		}
		return res
	}

	remaining := maxDistance
	for remaining > ArrivalEpsilon {
		d := Dist(res.Pos, to)
		if d <= ArrivalEpsilon {
			res.Pos = to
			res.Arrived = true
			return res
		}
		step := math.Min(SampleStep, math.Min(remaining, d))

		next, ok := stepOnce(res.Pos, to, step, canTraverse)
		if !ok {
			res.Blocked = true
			return res
		}
		res.DistanceMoved += Dist(res.Pos, next)
		res.Pos = next
		res.Moved = true
		remaining -= step

		if Dist(res.Pos, to) <= ArrivalEpsilon {
			res.Pos = to
			res.Arrived = true
			return res
		}
	}
	return res
}

func stepOnce(pos, to Vec2, step float64, canTraverse CanTraverse) (Vec2, bool) {
	if canTraverse(pos.X, pos.Z) {
		return bestCandidate(pos, to, step, canTraverse, true)
	}
	// The unit is inside an obstacle (external edits can do that). Try longer
	// and longer escape hops, then a blind 360 sweep.
	for _, esc := range escapeSteps {
		if next, ok := bestCandidate(pos, to, esc, canTraverse, true); ok {
			return next, true
		}
	}
	for _, esc := range escapeSteps {
		if next, ok := sweepCandidate(pos, to, esc, canTraverse); ok {
			return next, true
		}
	}
	return Vec2{}, false
}

// bestCandidate scores the rotated-heading fan (plus axis fallbacks when
// withAxis is set) and returns the lowest-scoring traversable position.
func bestCandidate(pos, to Vec2, step float64, canTraverse CanTraverse, withAxis bool) (Vec2, bool) {
	base := math.Atan2(to.Z-pos.Z, to.X-pos.X)
	cur := Dist(pos, to)

	best := Vec2{}
	bestScore := math.Inf(1)
	found := false

	consider := func(next Vec2, deviationDeg float64) {
		if !canTraverse(next.X, next.Z) {
			return
		}
		nd := Dist(next, to)
		score := nd + headingPenalty*math.Abs(deviationDeg)
		if nd > cur {
			score += regressPenalty * (nd - cur)
		}
		if score < bestScore {
			bestScore = score
			best = next
			found = true
		}
	}

	for _, off := range headingOffsets {
		ang := base + off*math.Pi/180
		consider(Vec2{X: pos.X + step*math.Cos(ang), Z: pos.Z + step*math.Sin(ang)}, off)
	}
	if withAxis {
		dx := to.X - pos.X
		dz := to.Z - pos.Z
		if dx != 0 {
			consider(Vec2{X: pos.X + step*sign(dx), Z: pos.Z}, 90)
		}
		if dz != 0 {
			consider(Vec2{X: pos.X, Z: pos.Z + step*sign(dz)}, 90)
		}
	}
	return best, found
}

// sweepCandidate tries a full circle at 30 degree increments, axis fallbacks
// disabled. Used only for escaping a blocked cell.
func sweepCandidate(pos, to Vec2, step float64, canTraverse CanTraverse) (Vec2, bool) {
	best := Vec2{}
	bestScore := math.Inf(1)
	found := false
	for deg := 0.0; deg < 360; deg += 30 {
		ang := deg * math.Pi / 180
		next := Vec2{X: pos.X + step*math.Cos(ang), Z: pos.Z + step*math.Sin(ang)}
		if !canTraverse(next.X, next.Z) {
			continue
		}
		if score := Dist(next, to); score < bestScore {
			bestScore = score
			best = next
			found = true
		}
	}
	return best, found
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
