package fleet

import "github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/nav"

// Claims is the tick-scoped reservation table that serializes target selection
// across the fleet. Cells are keyed by integer-truncated world coordinates.
// A fresh table is built at the top of every tick and discarded at the end;
// it is the only shared mutable state inside a tick and is threaded explicitly
// through each per-unit step.
type Claims struct {
	cells map[int64]struct{}
}

func NewClaims() *Claims {
	return &Claims{cells: make(map[int64]struct{})}
}

func (c *Claims) Claim(x, z float64) {
	c.cells[nav.CellKey(x, z)] = struct{}{}
}

func (c *Claims) Claimed(x, z float64) bool {
	_, ok := c.cells[nav.CellKey(x, z)]
	return ok
}

func (c *Claims) Release(x, z float64) {
	delete(c.cells, nav.CellKey(x, z))
}

func (c *Claims) Len() int {
	return len(c.cells)
}
