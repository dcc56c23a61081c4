package world

import (
	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/grid"
)

// Mask is a bit set of dynamic entity kinds used by occupancy queries.
type Mask uint32

const (
	MaskPlayer Mask = 1 << iota
	MaskEnemy
	MaskItem
	MaskProp
	MaskBomb

	// MaskBlocking covers everything that prevents a tile from moving or
	// respawning into a cell. Items are walked over and do not block.
	MaskBlocking = MaskPlayer | MaskEnemy | MaskProp | MaskBomb
	MaskAll      = MaskPlayer | MaskEnemy | MaskItem | MaskProp | MaskBomb
)

// Actor is a dynamic entity the core does not simulate: players, enemies,
// pickups and spawned props. Their movement is driven from outside.
type Actor struct {
	ID     ecs.EntityID
	Kind   Mask
	Prefab string
	Pos    grid.Pos
	cell   grid.Cell
}

func (a *Actor) Cell() grid.Cell { return a.cell }

// occupancyGrid is a cell → actor set map for O(1) collision checks.
// Several actors may share a cell.
type occupancyGrid struct {
	cells map[grid.Cell]map[ecs.EntityID]*Actor
}

func newOccupancyGrid() *occupancyGrid {
	return &occupancyGrid{cells: make(map[grid.Cell]map[ecs.EntityID]*Actor)}
}

func (g *occupancyGrid) occupy(a *Actor) {
	cell := g.cells[a.cell]
	if cell == nil {
		cell = make(map[ecs.EntityID]*Actor, 1)
		g.cells[a.cell] = cell
	}
	cell[a.ID] = a
}

func (g *occupancyGrid) vacate(a *Actor) {
	cell := g.cells[a.cell]
	if cell == nil {
		return
	}
	delete(cell, a.ID)
	if len(cell) == 0 {
		delete(g.cells, a.cell)
	}
}

// any reports whether an actor matching mask is in cell.
func (g *occupancyGrid) any(c grid.Cell, mask Mask) bool {
	for _, a := range g.cells[c] {
		if a.Kind&mask != 0 {
			return true
		}
	}
	return false
}

// first returns the lowest-ID actor in cell, so lookups are deterministic.
func (g *occupancyGrid) first(c grid.Cell) (*Actor, bool) {
	var best *Actor
	for _, a := range g.cells[c] {
		if best == nil || a.ID < best.ID {
			best = a
		}
	}
	return best, best != nil
}

func (g *occupancyGrid) reset() {
	for c := range g.cells {
		delete(g.cells, c)
	}
}
