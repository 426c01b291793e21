// Package tuning loads the operational balancing knobs from yaml.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet"
)

type Tuning struct {
	TickMs             int     `yaml:"tick_ms"`
	MinutesPerTick     float64 `yaml:"minutes_per_tick"`
	SnapshotEveryTicks int     `yaml:"snapshot_every_ticks"`

	Fleet  FleetTuning  `yaml:"fleet"`
	Course CourseTuning `yaml:"course"`
}

type FleetTuning struct {
	CutHeight           float64 `yaml:"cut_height"`
	ExtremeUrgency      float64 `yaml:"extreme_urgency"`
	DistanceDiscount    float64 `yaml:"distance_discount"`
	LongRangeDistance   float64 `yaml:"long_range_distance"`
	LongRangeGridStep   float64 `yaml:"long_range_grid_step"`
	MaxRanked           int     `yaml:"max_ranked"`
	MaxPathNodes        int     `yaml:"max_path_nodes"`
	ArrivalTolerance    float64 `yaml:"arrival_tolerance"`
	LowResourceFrac     float64 `yaml:"low_resource_frac"`
	ChargedFrac         float64 `yaml:"charged_frac"`
	ChargeRatePerMinute float64 `yaml:"charge_rate_per_minute"`
	RepairMinutes       float64 `yaml:"repair_minutes"`
	BreakdownBalance    float64 `yaml:"breakdown_balance"`
	FleetAIBreakdown    float64 `yaml:"fleet_ai_breakdown"`
	FuelBurnFactor      float64 `yaml:"fuel_burn_factor"`
}

type CourseTuning struct {
	GrowthPerMinute       float64 `yaml:"growth_per_minute"`
	MoistureLossPerMinute float64 `yaml:"moisture_loss_per_minute"`
	NutrientLossPerMinute float64 `yaml:"nutrient_loss_per_minute"`
	PatchSize             int     `yaml:"patch_size"`
}

// Load reads tuning.yaml; zero-valued fields keep core defaults downstream.
func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// FleetParams maps the yaml knobs onto core parameters.
func (t Tuning) FleetParams() fleet.Params {
	return fleet.Params{
		CutHeight:           t.Fleet.CutHeight,
		ExtremeUrgency:      t.Fleet.ExtremeUrgency,
		DistanceDiscount:    t.Fleet.DistanceDiscount,
		LongRangeDistance:   t.Fleet.LongRangeDistance,
		LongRangeGridStep:   t.Fleet.LongRangeGridStep,
		MaxRanked:           t.Fleet.MaxRanked,
		MaxPathNodes:        t.Fleet.MaxPathNodes,
		ArrivalTolerance:    t.Fleet.ArrivalTolerance,
		LowResourceFrac:     t.Fleet.LowResourceFrac,
		ChargedFrac:         t.Fleet.ChargedFrac,
		ChargeRatePerMinute: t.Fleet.ChargeRatePerMinute,
		RepairMinutes:       t.Fleet.RepairMinutes,
		BreakdownBalance:    t.Fleet.BreakdownBalance,
		FleetAIBreakdown:    t.Fleet.FleetAIBreakdown,
		FuelBurnFactor:      t.Fleet.FuelBurnFactor,
	}
}
