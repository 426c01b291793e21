// Package fleet is the autonomous-equipment simulation core: per-unit state
// machines, breakdown and charging behavior, tick-scoped claim allocation, and
// the roster bookkeeping around them. One call to Tick advances the whole
// fleet; callers own the terrain, the economy, and the walkability rule.
package fleet

import (
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/nav"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/urgency"
)

// Unit types, shared with the urgency logic.
const (
	TypeMower    = urgency.TypeMower
	TypeSprayer  = urgency.TypeSprayer
	TypeSpreader = urgency.TypeSpreader
	TypeRaker    = urgency.TypeRaker
)

// WorkCandidate is the externally supplied description of a terrain patch.
type WorkCandidate = urgency.Candidate

// RobotState is the lifecycle state of one unit.
type RobotState string

const (
	StateIdle     RobotState = "idle"
	StateMoving   RobotState = "moving"
	StateWorking  RobotState = "working"
	StateCharging RobotState = "charging"
	StateBroken   RobotState = "broken"
)

// Stats are the equipment characteristics of a unit. Speed is world units per
// simulated minute; BreakdownRate is expected failures per operating hour
// before balancing.
type Stats struct {
	Speed                float64
	Efficiency           float64
	FuelCapacity         float64
	FuelEfficiency       float64
	BreakdownRate        float64
	RepairMinutes        float64
	OperatingCostPerHour float64

	// AllowedTerrain restricts the unit to a subset of terrain codes
	// (a fairway mower, for example). Empty means unrestricted.
	AllowedTerrain []string
}

// Model is a purchasable equipment definition.
type Model struct {
	ID           string
	Type         string
	Stats        Stats
	PurchaseCost float64
	IsAutonomous bool
}

// RobotUnit is one maintenance unit. Units are value types: Tick copies the
// roster and returns a fresh one, so callers can hold old snapshots freely.
type RobotUnit struct {
	ID    string
	Type  string
	Model string
	Stats Stats

	X float64
	Z float64

	Resource    float64
	ResourceMax float64

	State RobotState

	// Target is set while the unit has a destination; Path and PathIndex are
	// populated only while State is moving and a grid path was planned.
	Target    *nav.Vec2
	Path      []nav.Vec2
	PathIndex int

	// BreakdownRemaining is repair downtime in minutes; positive iff broken.
	BreakdownRemaining float64
}

// Pos returns the unit's position as a vector.
func (r *RobotUnit) Pos() nav.Vec2 {
	return nav.Vec2{X: r.X, Z: r.Z}
}

// LowResource reports whether the unit must abandon work and recharge.
func (r *RobotUnit) LowResource(p *Params) bool {
	return r.Resource < p.LowResourceFrac*r.ResourceMax
}

// clearTask drops target and path together so the "path only while moving"
// invariant cannot be violated piecemeal.
func (r *RobotUnit) clearTask() {
	r.Target = nil
	r.Path = nil
	r.PathIndex = 0
}

func (r *RobotUnit) setTarget(t nav.Vec2) {
	c := t
	r.Target = &c
}

// clone deep-copies the unit so mutations never leak into a prior snapshot.
func (r RobotUnit) clone() RobotUnit {
	out := r
	if r.Target != nil {
		t := *r.Target
		out.Target = &t
	}
	if r.Path != nil {
		out.Path = append([]nav.Vec2(nil), r.Path...)
	}
	if r.Stats.AllowedTerrain != nil {
		out.Stats.AllowedTerrain = append([]string(nil), r.Stats.AllowedTerrain...)
	}
	return out
}

// State is the whole fleet plus the shared charging station. Owned by the
// simulation; external code reads snapshots and calls Tick/Purchase/Sell.
type State struct {
	Robots   []RobotUnit
	StationX float64
	StationZ float64
}

// NewState returns an empty fleet with the charging station at (x,z).
func NewState(stationX, stationZ float64) State {
	return State{StationX: stationX, StationZ: stationZ}
}

func (s State) station() nav.Vec2 {
	return nav.Vec2{X: s.StationX, Z: s.StationZ}
}

func (s State) clone() State {
	out := s
	out.Robots = make([]RobotUnit, len(s.Robots))
	for i := range s.Robots {
		out.Robots[i] = s.Robots[i].clone()
	}
	return out
}

// RobotEffect is the per-tick work output of one unit, applied to the terrain
// by the caller.
type RobotEffect struct {
	Type        string
	EquipmentID string
	X           float64
	Z           float64
	Efficiency  float64
}

// TraversalRule answers whether a unit may stand at (x,z). Pure, cheap,
// called many times per tick.
type TraversalRule func(r RobotUnit, x, z float64) bool

// Rand supplies the breakdown draw; inject a seeded source for reproducible
// runs and a zero source in tests.
type Rand interface {
	Float64() float64
}

// Params are the operational knobs of the core. Zero values are filled by
// Defaults; tuning.yaml overrides them in the server.
type Params struct {
	CutHeight           float64
	ExtremeUrgency      float64
	DistanceDiscount    float64
	LongRangeDistance   float64
	LongRangeGridStep   float64
	MaxRanked           int
	MaxPathNodes        int
	ArrivalTolerance    float64
	LowResourceFrac     float64
	ChargedFrac         float64
	ChargeRatePerMinute float64
	RepairMinutes       float64
	BreakdownBalance    float64
	FleetAIBreakdown    float64
	FuelBurnFactor      float64
}

// DefaultParams returns the balancing constants the simulation ships with.
func DefaultParams() Params {
	return Params{
		CutHeight:           30,
		ExtremeUrgency:      50,
		DistanceDiscount:    20,
		LongRangeDistance:   30,
		LongRangeGridStep:   2,
		MaxRanked:           12,
		MaxPathNodes:        nav.DefaultMaxNodes,
		ArrivalTolerance:    0.5,
		LowResourceFrac:     0.1,
		ChargedFrac:         0.9,
		ChargeRatePerMinute: 5,
		RepairMinutes:       60,
		BreakdownBalance:    0.2,
		FleetAIBreakdown:    0.6,
		FuelBurnFactor:      0.5,
	}
}

func (p *Params) applyDefaults() {
	d := DefaultParams()
	if p.CutHeight <= 0 {
		p.CutHeight = d.CutHeight
	}
	if p.ExtremeUrgency <= 0 {
		p.ExtremeUrgency = d.ExtremeUrgency
	}
	if p.DistanceDiscount <= 0 {
		p.DistanceDiscount = d.DistanceDiscount
	}
	if p.LongRangeDistance <= 0 {
		p.LongRangeDistance = d.LongRangeDistance
	}
	if p.LongRangeGridStep <= 0 {
		p.LongRangeGridStep = d.LongRangeGridStep
	}
	if p.MaxRanked <= 0 {
		p.MaxRanked = d.MaxRanked
	}
	if p.MaxPathNodes <= 0 {
		p.MaxPathNodes = d.MaxPathNodes
	}
	if p.ArrivalTolerance <= 0 {
		p.ArrivalTolerance = d.ArrivalTolerance
	}
	if p.LowResourceFrac <= 0 {
		p.LowResourceFrac = d.LowResourceFrac
	}
	if p.ChargedFrac <= 0 {
		p.ChargedFrac = d.ChargedFrac
	}
	if p.ChargeRatePerMinute <= 0 {
		p.ChargeRatePerMinute = d.ChargeRatePerMinute
	}
	if p.RepairMinutes <= 0 {
		p.RepairMinutes = d.RepairMinutes
	}
	if p.BreakdownBalance <= 0 {
		p.BreakdownBalance = d.BreakdownBalance
	}
	if p.FleetAIBreakdown <= 0 {
		p.FleetAIBreakdown = d.FleetAIBreakdown
	}
	if p.FuelBurnFactor <= 0 {
		p.FuelBurnFactor = d.FuelBurnFactor
	}
}
