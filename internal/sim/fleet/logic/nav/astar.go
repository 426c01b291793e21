package nav

import (
	"math"
	"sort"
)

const (
	// DefaultMaxNodes bounds a single search; exceeding it means "no path".
	DefaultMaxNodes = 10000

	sqrt2 = math.Sqrt2
)

type gridCell struct {
	gx int
	gz int
}

type pathNode struct {
	cell   gridCell
	g      float64
	f      float64
	parent int // index into the node arena, -1 for the start node
}

// FindPath runs A* on a square grid snapped to gridStep and returns the
// waypoint list from just after the start cell up to the exact goal position.
// Diagonal steps cost sqrt(2)*gridStep and are rejected unless both adjacent
// cardinal cells are traversable, so paths never cut corners. Returns nil when
// the open set is exhausted or maxNodes expansions are spent; both simply mean
// no path. The final waypoint is always the exact goal, not its snapped cell.
func FindPath(start, goal Vec2, canTraverse CanTraverse, gridStep float64, maxNodes int) []Vec2 {
	if gridStep <= 0 {
		gridStep = 1
	}
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	startCell := snapCell(start, gridStep)
	goalCell := snapCell(goal, gridStep)
	if startCell == goalCell {
		return []Vec2{goal}
	}

	walkable := func(c gridCell) bool {
		return canTraverse(float64(c.gx)*gridStep, float64(c.gz)*gridStep)
	}

	arena := []pathNode{{cell: startCell, g: 0, f: octile(startCell, goalCell, gridStep), parent: -1}}
	// Open list kept sorted by descending f so the cheapest node pops off the
	// tail without a heap.
	open := []int{0}
	closed := map[gridCell]bool{}
	bestG := map[gridCell]float64{startCell: 0}

	expanded := 0
	for len(open) > 0 {
		cur := open[len(open)-1]
		open = open[:len(open)-1]
		node := arena[cur]
		if closed[node.cell] {
			continue
		}
		if node.cell == goalCell {
			return reconstruct(arena, cur, goal, gridStep)
		}
		closed[node.cell] = true

		expanded++
		if expanded > maxNodes {
			return nil
		}

		pushed := false
		for dx := -1; dx <= 1; dx++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dz == 0 {
					continue
				}
				next := gridCell{gx: node.cell.gx + dx, gz: node.cell.gz + dz}
				if closed[next] || !walkable(next) {
					continue
				}
				stepCost := gridStep
				if dx != 0 && dz != 0 {
					// Corner-cutting guard: a diagonal is only legal when both
					// flanking cardinal cells are independently traversable.
					if !walkable(gridCell{gx: node.cell.gx + dx, gz: node.cell.gz}) ||
						!walkable(gridCell{gx: node.cell.gx, gz: node.cell.gz + dz}) {
						continue
					}
					stepCost = sqrt2 * gridStep
				}
				g := node.g + stepCost
				if prev, ok := bestG[next]; ok && g >= prev {
					continue
				}
				bestG[next] = g
				arena = append(arena, pathNode{
					cell:   next,
					g:      g,
					f:      g + octile(next, goalCell, gridStep),
					parent: cur,
				})
				open = append(open, len(arena)-1)
				pushed = true
			}
		}
		if pushed {
			sort.Slice(open, func(i, j int) bool { return arena[open[i]].f > arena[open[j]].f })
		}
	}
	return nil
}

func snapCell(p Vec2, gridStep float64) gridCell {
	return gridCell{
		gx: int(math.Round(p.X / gridStep)),
		gz: int(math.Round(p.Z / gridStep)),
	}
}

// octile is the admissible, consistent heuristic matching 8-way movement cost.
func octile(a, b gridCell, gridStep float64) float64 {
	dx := math.Abs(float64(a.gx - b.gx))
	dz := math.Abs(float64(a.gz - b.gz))
	return gridStep * (dx + dz + (sqrt2-2)*math.Min(dx, dz))
}

func reconstruct(arena []pathNode, end int, goal Vec2, gridStep float64) []Vec2 {
	var rev []Vec2
	for i := end; i >= 0; i = arena[i].parent {
		c := arena[i].cell
		rev = append(rev, Vec2{X: float64(c.gx) * gridStep, Z: float64(c.gz) * gridStep})
	}
	// Drop the start cell, reverse, and pin the last waypoint to the exact
	// requested goal so sub-grid precision survives planning.
	path := make([]Vec2, 0, len(rev)-1)
	for i := len(rev) - 2; i >= 0; i-- {
		path = append(path, rev[i])
	}
	if len(path) == 0 {
		return []Vec2{goal}
	}
	path[len(path)-1] = goal
	return path
}
