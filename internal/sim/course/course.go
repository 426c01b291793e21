// Package course is the minimal terrain collaborator the fleet core works
// against: a rectangular tile grid with per-tile turf stats. It supplies the
// per-tick WorkCandidate snapshot and applies RobotEffects back to the turf.
// Rendering, editing, and the full agronomy model live outside this subsystem.
package course

import (
	"math"
	"math/rand"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/urgency"
)

// Tile terrain codes, indexed into the palette below.
const (
	tileGreen = iota
	tileFairway
	tileSemiRough
	tileRough
	tileTee
	tileBunker
	tileWater
)

var palette = []string{
	urgency.TerrainGreen,
	urgency.TerrainFairway,
	urgency.TerrainSemiRough,
	urgency.TerrainRough,
	urgency.TerrainTee,
	urgency.TerrainBunker,
	urgency.TerrainWater,
}

// Params are the turf drift rates, per simulated minute.
type Params struct {
	GrowthPerMinute       float64
	MoistureLossPerMinute float64
	NutrientLossPerMinute float64
	PatchSize             int
}

func DefaultParams() Params {
	return Params{
		GrowthPerMinute:       0.05,
		MoistureLossPerMinute: 0.03,
		NutrientLossPerMinute: 0.02,
		PatchSize:             8,
	}
}

func (p *Params) applyDefaults() {
	d := DefaultParams()
	if p.GrowthPerMinute <= 0 {
		p.GrowthPerMinute = d.GrowthPerMinute
	}
	if p.MoistureLossPerMinute <= 0 {
		p.MoistureLossPerMinute = d.MoistureLossPerMinute
	}
	if p.NutrientLossPerMinute <= 0 {
		p.NutrientLossPerMinute = d.NutrientLossPerMinute
	}
	if p.PatchSize <= 0 {
		p.PatchSize = d.PatchSize
	}
}

// Course holds the tile grid. One tile is one world unit; tile (tx,tz) covers
// world positions [tx, tx+1) x [tz, tz+1).
type Course struct {
	W int
	H int

	terrain   []uint8
	moisture  []float64
	nutrients []float64
	height    []float64
	health    []float64

	params Params
}

// Generate lays out a small synthetic course: a fairway band through rough,
// a green with a tee across from it, a couple of bunkers and a pond. Stats
// start mid-range so the fleet has work from the first tick.
func Generate(w, h int, seed int64, params Params) *Course {
	params.applyDefaults()
	c := &Course{
		W:         w,
		H:         h,
		terrain:   make([]uint8, w*h),
		moisture:  make([]float64, w*h),
		nutrients: make([]float64, w*h),
		height:    make([]float64, w*h),
		health:    make([]float64, w*h),
		params:    params,
	}
	rng := rand.New(rand.NewSource(seed))

	fairwayLo := h/2 - h/8
	fairwayHi := h/2 + h/8
	for tz := 0; tz < h; tz++ {
		for tx := 0; tx < w; tx++ {
			i := tz*w + tx
			switch {
			case tz >= fairwayLo && tz <= fairwayHi:
				c.terrain[i] = tileFairway
			case tz == fairwayLo-1 || tz == fairwayHi+1:
				c.terrain[i] = tileSemiRough
			default:
				c.terrain[i] = tileRough
			}
			c.moisture[i] = 45 + 15*rng.Float64()
			c.nutrients[i] = 45 + 15*rng.Float64()
			c.height[i] = 20 + 20*rng.Float64()
			c.health[i] = 70 + 25*rng.Float64()
		}
	}

	c.stampCircle(w-w/8, h/2, 3, tileGreen)
	c.stampCircle(w/8, h/2, 2, tileTee)
	c.stampCircle(w-w/8, h/2-5, 2, tileBunker)
	c.stampCircle(w-w/8, h/2+5, 2, tileBunker)
	c.stampCircle(w/2, h/6, 3, tileWater)
	return c
}

func (c *Course) stampCircle(cx, cz, r int, code uint8) {
	for tz := cz - r; tz <= cz+r; tz++ {
		for tx := cx - r; tx <= cx+r; tx++ {
			if tx < 0 || tz < 0 || tx >= c.W || tz >= c.H {
				continue
			}
			dx := float64(tx - cx)
			dz := float64(tz - cz)
			if dx*dx+dz*dz <= float64(r*r) {
				c.terrain[tz*c.W+tx] = code
			}
		}
	}
}

// Step drifts the turf: grass grows, moisture and nutrients decay, and health
// drifts toward what the moisture/nutrient levels support. Bunker and water
// tiles do not grow.
func (c *Course) Step(dtMinutes float64) {
	if dtMinutes <= 0 {
		return
	}
	for i := range c.terrain {
		if c.terrain[i] == tileWater {
			continue
		}
		if c.terrain[i] != tileBunker {
			c.height[i] = clampStat(c.height[i] + c.params.GrowthPerMinute*dtMinutes)
		}
		c.moisture[i] = clampStat(c.moisture[i] - c.params.MoistureLossPerMinute*dtMinutes)
		c.nutrients[i] = clampStat(c.nutrients[i] - c.params.NutrientLossPerMinute*dtMinutes)

		supported := (c.moisture[i] + c.nutrients[i]) / 2 * 1.6
		if supported > 100 {
			supported = 100
		}
		c.health[i] += (supported - c.health[i]) * 0.002 * dtMinutes
		c.health[i] = clampStat(c.health[i])
	}
}

// CanTraverse is the walkability rule handed to the fleet: inside the course
// bounds and not water.
func (c *Course) CanTraverse(_ fleet.RobotUnit, x, z float64) bool {
	tx := int(math.Floor(x))
	tz := int(math.Floor(z))
	if tx < 0 || tz < 0 || tx >= c.W || tz >= c.H {
		return false
	}
	return c.terrain[tz*c.W+tx] != tileWater
}

// Candidates aggregates the grid into patch-sized work candidates with
// per-terrain-code breakdowns. Snapshots are rebuilt every tick.
func (c *Course) Candidates() []fleet.WorkCandidate {
	patch := c.params.PatchSize
	var out []fleet.WorkCandidate
	for pz := 0; pz < c.H; pz += patch {
		for px := 0; px < c.W; px += patch {
			if cand, ok := c.patchCandidate(px, pz, patch); ok {
				out = append(out, cand)
			}
		}
	}
	return out
}

func (c *Course) patchCandidate(px, pz, patch int) (fleet.WorkCandidate, bool) {
	type agg struct {
		n                                   int
		sx, sz                              float64
		moisture, nutrients, height, health statAgg
	}
	byCode := map[string]*agg{}
	total := agg{}

	for tz := pz; tz < pz+patch && tz < c.H; tz++ {
		for tx := px; tx < px+patch && tx < c.W; tx++ {
			i := tz*c.W + tx
			code := palette[c.terrain[i]]
			a := byCode[code]
			if a == nil {
				a = &agg{}
				byCode[code] = a
			}
			for _, t := range []*agg{a, &total} {
				t.n++
				t.sx += float64(tx) + 0.5
				t.sz += float64(tz) + 0.5
				t.moisture.add(c.moisture[i])
				t.nutrients.add(c.nutrients[i])
				t.height.add(c.height[i])
				t.health.add(c.health[i])
			}
		}
	}
	if total.n == 0 {
		return fleet.WorkCandidate{}, false
	}

	dominant := ""
	dominantN := 0
	breakdown := make(map[string]urgency.SubPatch, len(byCode))
	for code, a := range byCode {
		if a.n > dominantN {
			dominantN = a.n
			dominant = code
		}
		breakdown[code] = urgency.SubPatch{
			X:         a.sx / float64(a.n),
			Z:         a.sz / float64(a.n),
			Weight:    float64(a.n) / float64(total.n),
			Moisture:  a.moisture.stat(),
			Nutrients: a.nutrients.stat(),
			Height:    a.height.stat(),
			Health:    a.health.stat(),
		}
	}

	return fleet.WorkCandidate{
		X:         total.sx / float64(total.n),
		Z:         total.sz / float64(total.n),
		Moisture:  total.moisture.stat(),
		Nutrients: total.nutrients.stat(),
		Height:    total.height.stat(),
		Health:    total.health.stat(),
		Dominant:  dominant,
		ByTerrain: breakdown,
	}, true
}

// Apply mutates the turf under each effect. The treated area is the patch the
// effect's cell belongs to, scaled by efficiency and elapsed time.
func (c *Course) Apply(effects []fleet.RobotEffect, dtMinutes float64) {
	if dtMinutes <= 0 {
		return
	}
	patch := c.params.PatchSize
	for _, eff := range effects {
		px := int(math.Floor(eff.X/float64(patch))) * patch
		pz := int(math.Floor(eff.Z/float64(patch))) * patch
		amount := eff.Efficiency * dtMinutes
		for tz := pz; tz < pz+patch && tz < c.H; tz++ {
			if tz < 0 {
				continue
			}
			for tx := px; tx < px+patch && tx < c.W; tx++ {
				if tx < 0 {
					continue
				}
				c.applyTile(tz*c.W+tx, eff.Type, amount)
			}
		}
	}
}

func (c *Course) applyTile(i int, unitType string, amount float64) {
	switch unitType {
	case fleet.TypeMower:
		if c.terrain[i] != tileBunker && c.terrain[i] != tileWater {
			c.height[i] = clampStat(c.height[i] - amount)
		}
	case fleet.TypeSprayer:
		c.moisture[i] = clampStat(c.moisture[i] + amount)
	case fleet.TypeSpreader:
		c.nutrients[i] = clampStat(c.nutrients[i] + amount)
	case fleet.TypeRaker:
		if c.terrain[i] == tileBunker {
			c.health[i] = clampStat(c.health[i] + amount)
		}
	}
}

func clampStat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

type statAgg struct {
	n   int
	sum float64
	min float64
	max float64
}

func (s *statAgg) add(v float64) {
	if s.n == 0 {
		s.min, s.max = v, v
	} else {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	s.n++
	s.sum += v
}

func (s *statAgg) stat() urgency.Stat {
	if s.n == 0 {
		return urgency.Stat{}
	}
	return urgency.Stat{Avg: s.sum / float64(s.n), Min: s.min, Max: s.max}
}
