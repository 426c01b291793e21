// Package nav holds the pure movement logic for autonomous units: grid A*
// pathfinding and the continuous obstacle-avoiding stepper. Everything here is
// deterministic and side-effect free; walkability is always injected as a
// predicate so the package never touches world state.
package nav

import "math"

// Vec2 is a world-space position on the (x,z) plane.
type Vec2 struct {
	X float64
	Z float64
}

// CanTraverse answers whether the current unit may occupy (x,z). It must be
// cheap and reentrant: a single path search may call it thousands of times.
type CanTraverse func(x, z float64) bool

func Dist(a, b Vec2) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// CellKey packs the integer-truncated cell coordinates of (x,z) into a single
// int64 so hot per-tick maps never allocate string keys.
func CellKey(x, z float64) int64 {
	cx := int32(math.Trunc(x))
	cz := int32(math.Trunc(z))
	return int64(cx)<<32 | int64(uint32(cz))
}

// SameCell reports whether two positions truncate to the same world cell.
func SameCell(a, b Vec2) bool {
	return CellKey(a.X, a.Z) == CellKey(b.X, b.Z)
}
