package fleet

import (
	"testing"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/nav"
)

func TestParkingSlot_Deterministic(t *testing.T) {
	station := nav.Vec2{X: 50, Z: 50}
	unit := RobotUnit{ID: "unit-a", X: 40, Z: 40}
	first := parkingSlot(station, unit, openRule)
	second := parkingSlot(station, unit, openRule)
	if first != second {
		t.Fatalf("same unit picked different slots: %+v vs %+v", first, second)
	}
	if nav.Dist(station, first) > 3.76 {
		t.Fatalf("slot %+v outside the outer parking ring", first)
	}
}

func TestParkingSlot_SpreadsUnits(t *testing.T) {
	station := nav.Vec2{X: 50, Z: 50}
	slots := map[nav.Vec2]bool{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		unit := RobotUnit{ID: id, X: 50, Z: 45}
		slots[parkingSlot(station, unit, openRule)] = true
	}
	if len(slots) < 3 {
		t.Fatalf("6 units shared %d slots, expected them to spread", len(slots))
	}
}

func TestParkingSlot_HonorsTraversal(t *testing.T) {
	station := nav.Vec2{X: 0, Z: 0}
	unit := RobotUnit{ID: "unit-a", X: 5, Z: 5}
	// Only the north half of the yard is usable.
	rule := func(_ RobotUnit, _, z float64) bool { return z >= 0 }
	slot := parkingSlot(station, unit, rule)
	if slot.Z < 0 {
		t.Fatalf("slot %+v violates the traversal rule", slot)
	}
}

func TestParkingSlot_AllBlockedFallsBackToStation(t *testing.T) {
	station := nav.Vec2{X: 0, Z: 0}
	unit := RobotUnit{ID: "unit-a", X: 9, Z: 9}
	rule := func(RobotUnit, float64, float64) bool { return false }
	if slot := parkingSlot(station, unit, rule); slot != station {
		t.Fatalf("blocked yard should fall back to the station, got %+v", slot)
	}
}
