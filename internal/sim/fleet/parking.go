package fleet

import (
	"hash/fnv"
	"math"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/nav"
)

// Parking slots are laid out on concentric rings around the charging station
// so idle units spread out instead of stacking on the station cell.
var parkingRadii = []float64{0, 1.25, 2.5, 3.75}

const (
	parkingSlotsPerRing = 10
	parkingIndexWeight  = 0.2
)

// parkingSlot picks the idle spot for a unit: a hash of its id selects a
// preferred slot, then the nearest traversable slot wins with ties broken
// toward the preferred index. Falls back to the station itself when every
// slot is blocked.
func parkingSlot(station nav.Vec2, unit RobotUnit, rule TraversalRule) nav.Vec2 {
	slots := parkingSlots(station)
	preferred := int(hashID(unit.ID) % uint32(len(slots)))

	best := station
	bestScore := math.Inf(1)
	found := false
	for i, slot := range slots {
		if !rule(unit, slot.X, slot.Z) {
			continue
		}
		idxDist := i - preferred
		if idxDist < 0 {
			idxDist = -idxDist
		}
		score := nav.Dist(unit.Pos(), slot) + parkingIndexWeight*float64(idxDist)
		if score < bestScore {
			bestScore = score
			best = slot
			found = true
		}
	}
	if !found {
		return station
	}
	return best
}

func parkingSlots(station nav.Vec2) []nav.Vec2 {
	slots := make([]nav.Vec2, 0, 1+(len(parkingRadii)-1)*parkingSlotsPerRing)
	for _, radius := range parkingRadii {
		if radius == 0 {
			slots = append(slots, station)
			continue
		}
		for i := 0; i < parkingSlotsPerRing; i++ {
			ang := 2 * math.Pi * float64(i) / parkingSlotsPerRing
			slots = append(slots, nav.Vec2{
				X: station.X + radius*math.Cos(ang),
				Z: station.Z + radius*math.Sin(ang),
			})
		}
	}
	return slots
}

func hashID(id string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32()
}
