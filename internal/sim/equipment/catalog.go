// Package equipment loads the purchasable model catalog from yaml.
package equipment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet"
)

// Catalog maps model id to its definition.
type Catalog struct {
	Models map[string]fleet.Model
}

type fileModel struct {
	ID                   string   `yaml:"id"`
	Type                 string   `yaml:"type"`
	Speed                float64  `yaml:"speed"`
	Efficiency           float64  `yaml:"efficiency"`
	FuelCapacity         float64  `yaml:"fuel_capacity"`
	FuelEfficiency       float64  `yaml:"fuel_efficiency"`
	BreakdownRate        float64  `yaml:"breakdown_rate"`
	RepairMinutes        float64  `yaml:"repair_minutes"`
	OperatingCostPerHour float64  `yaml:"operating_cost_per_hour"`
	PurchaseCost         float64  `yaml:"purchase_cost"`
	Autonomous           bool     `yaml:"autonomous"`
	AllowedTerrain       []string `yaml:"allowed_terrain,omitempty"`
}

type catalogFile struct {
	Models []fileModel `yaml:"models"`
}

// Load reads equipment.yaml and validates the entries.
func Load(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Catalog{}, fmt.Errorf("equipment.yaml: %w", err)
	}
	cat := Catalog{Models: make(map[string]fleet.Model, len(f.Models))}
	for _, m := range f.Models {
		if m.ID == "" {
			return Catalog{}, fmt.Errorf("equipment.yaml: model with empty id")
		}
		if _, dup := cat.Models[m.ID]; dup {
			return Catalog{}, fmt.Errorf("equipment.yaml: duplicate model %q", m.ID)
		}
		switch m.Type {
		case fleet.TypeMower, fleet.TypeSprayer, fleet.TypeSpreader, fleet.TypeRaker:
		default:
			return Catalog{}, fmt.Errorf("equipment.yaml: model %q has unknown type %q", m.ID, m.Type)
		}
		cat.Models[m.ID] = fleet.Model{
			ID:   m.ID,
			Type: m.Type,
			Stats: fleet.Stats{
				Speed:                m.Speed,
				Efficiency:           m.Efficiency,
				FuelCapacity:         m.FuelCapacity,
				FuelEfficiency:       m.FuelEfficiency,
				BreakdownRate:        m.BreakdownRate,
				RepairMinutes:        m.RepairMinutes,
				OperatingCostPerHour: m.OperatingCostPerHour,
				AllowedTerrain:       m.AllowedTerrain,
			},
			PurchaseCost: m.PurchaseCost,
			IsAutonomous: m.Autonomous,
		}
	}
	return cat, nil
}
