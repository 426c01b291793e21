package equipment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet"
)

func TestLoad_ShippedCatalog(t *testing.T) {
	cat, err := Load("../../../configs/equipment.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cat.Models) != 7 {
		t.Fatalf("catalog has %d models, want 7", len(cat.Models))
	}
	riding, ok := cat.Models["mower_riding"]
	if !ok {
		t.Fatalf("mower_riding missing")
	}
	if riding.Type != fleet.TypeMower || !riding.IsAutonomous || riding.PurchaseCost != 4200 {
		t.Fatalf("mower_riding = %+v", riding)
	}
	if riding.Stats.Speed != 8 || riding.Stats.OperatingCostPerHour != 12 {
		t.Fatalf("mower_riding stats = %+v", riding.Stats)
	}
	fairway := cat.Models["mower_fairway"]
	if len(fairway.Stats.AllowedTerrain) != 2 || fairway.Stats.AllowedTerrain[0] != "FAIRWAY" {
		t.Fatalf("mower_fairway terrain = %v", fairway.Stats.AllowedTerrain)
	}
	if push := cat.Models["mower_push"]; push.IsAutonomous {
		t.Fatalf("mower_push must not be autonomous")
	}
}

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "equipment.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad_RejectsDuplicateID(t *testing.T) {
	path := writeCatalog(t, `
models:
  - id: m1
    type: mower
  - id: m1
    type: mower
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("duplicate id accepted")
	}
}

func TestLoad_RejectsUnknownType(t *testing.T) {
	path := writeCatalog(t, `
models:
  - id: cart
    type: beverage_cart
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("unknown type accepted")
	}
}

func TestLoad_RejectsEmptyID(t *testing.T) {
	path := writeCatalog(t, `
models:
  - type: mower
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("empty id accepted")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}
