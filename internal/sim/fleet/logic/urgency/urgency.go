// Package urgency scores terrain work candidates for each unit type. Pure
// functions over snapshot data; the fleet package owns when and for whom a
// score is computed.
package urgency

import "math"

// Unit types.
const (
	TypeMower    = "mower"
	TypeSprayer  = "sprayer"
	TypeSpreader = "spreader"
	TypeRaker    = "raker"
)

// Terrain codes, matching the course tile palette.
const (
	TerrainGreen     = "GREEN"
	TerrainFairway   = "FAIRWAY"
	TerrainSemiRough = "SEMI_ROUGH"
	TerrainRough     = "ROUGH"
	TerrainTee       = "TEE"
	TerrainBunker    = "BUNKER"
	TerrainWater     = "WATER"
)

const (
	// MoistureTarget / NutrientTarget are the levels sprayers and spreaders
	// top patches up toward; deficits below them drive urgency.
	MoistureTarget = 50.0
	NutrientTarget = 50.0

	// MinActionable is the urgency floor below which a candidate is ignored.
	MinActionable = 1.0
)

// Stat aggregates one measurement over a patch.
type Stat struct {
	Avg float64
	Min float64
	Max float64
}

// SubPatch is the per-terrain-code slice of a candidate, used to re-project
// a patch for units restricted to certain codes.
type SubPatch struct {
	X      float64
	Z      float64
	Weight float64 // tile share of the parent patch, 0..1

	Moisture  Stat
	Nutrients Stat
	Height    Stat
	Health    Stat
}

// Candidate is one patch of terrain needing attention. Snapshots live for a
// single tick and are never retained.
type Candidate struct {
	X float64
	Z float64

	Moisture  Stat
	Nutrients Stat
	Height    Stat
	Health    Stat

	Dominant  string
	ByTerrain map[string]SubPatch
}

// Score returns the urgency of c for a unit of the given type. Zero means the
// patch needs nothing this unit can provide.
func Score(unitType string, c Candidate, cutHeight float64) float64 {
	switch unitType {
	case TypeMower:
		avgOver := math.Max(0, c.Height.Avg-cutHeight)
		worstOver := math.Max(0, c.Height.Max-cutHeight)
		// Mowers park once nothing is overgrown; they never chase health.
		return 0.7*avgOver + 0.3*worstOver
	case TypeSprayer:
		return deficitScore(c.Moisture, MoistureTarget)
	case TypeSpreader:
		return deficitScore(c.Nutrients, NutrientTarget)
	case TypeRaker:
		if !IsSand(c.Dominant) {
			return 0
		}
		return math.Max(0, 100-c.Health.Avg)
	default:
		return 0
	}
}

func deficitScore(s Stat, target float64) float64 {
	avgDef := math.Max(0, target-s.Avg)
	worstDef := math.Max(0, target-s.Min)
	return 1.4*avgDef + 0.6*worstDef
}

// Project narrows c to only the allowed terrain codes, rebuilding position and
// stats from the per-code breakdown weighted by tile share. Returns false when
// the candidate carries no data for any allowed code.
func Project(c Candidate, allowed []string) (Candidate, bool) {
	if len(allowed) == 0 {
		return c, true
	}
	if len(c.ByTerrain) == 0 {
		return Candidate{}, false
	}

	out := c
	out.ByTerrain = map[string]SubPatch{}
	var weight, x, z float64
	var moisture, nutrients, height, health accum
	dominant := ""
	dominantWeight := -1.0

	for _, code := range allowed {
		sub, ok := c.ByTerrain[code]
		if !ok || sub.Weight <= 0 {
			continue
		}
		out.ByTerrain[code] = sub
		weight += sub.Weight
		x += sub.X * sub.Weight
		z += sub.Z * sub.Weight
		moisture.add(sub.Moisture, sub.Weight)
		nutrients.add(sub.Nutrients, sub.Weight)
		height.add(sub.Height, sub.Weight)
		health.add(sub.Health, sub.Weight)
		if sub.Weight > dominantWeight {
			dominantWeight = sub.Weight
			dominant = code
		}
	}
	if weight <= 0 {
		return Candidate{}, false
	}

	out.X = x / weight
	out.Z = z / weight
	out.Moisture = moisture.stat(weight)
	out.Nutrients = nutrients.stat(weight)
	out.Height = height.stat(weight)
	out.Health = health.stat(weight)
	out.Dominant = dominant
	return out, true
}

// WaterOnly reports whether the candidate contains nothing but water tiles.
// Such patches are never valid work targets.
func WaterOnly(c Candidate) bool {
	if c.Dominant != TerrainWater {
		return false
	}
	if len(c.ByTerrain) == 0 {
		return true
	}
	for code, sub := range c.ByTerrain {
		if code != TerrainWater && sub.Weight > 0 {
			return false
		}
	}
	return true
}

// IsSand reports whether a terrain code counts as a bunker surface.
func IsSand(code string) bool {
	return code == TerrainBunker
}

type accum struct {
	sum   float64
	min   float64
	max   float64
	first bool
}

func (a *accum) add(s Stat, w float64) {
	a.sum += s.Avg * w
	if !a.first {
		a.min = s.Min
		a.max = s.Max
		a.first = true
		return
	}
	a.min = math.Min(a.min, s.Min)
	a.max = math.Max(a.max, s.Max)
}

func (a *accum) stat(weight float64) Stat {
	return Stat{Avg: a.sum / weight, Min: a.min, Max: a.max}
}
