package handler

import (
	"time"

	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/schedule"
	"github.com/blastgrid/server/internal/world"
)

// Dynamite is a destructible tile that goes off in two stages: a piercing
// cross on its own cell, then after Delay four more crosses Radius cells
// away in each direction.
type Dynamite struct {
	Radius int
	Delay  time.Duration

	triggered map[grid.Cell]bool
}

func NewDynamite(radius int, delay time.Duration) *Dynamite {
	return &Dynamite{Radius: radius, Delay: delay, triggered: make(map[grid.Cell]bool)}
}

func (d *Dynamite) Start(*Env) {
	clear(d.triggered)
}

func (d *Dynamite) DestructibleHit(env *Env, h Hit) bool {
	if d.triggered[h.Cell] {
		return true
	}
	d.triggered[h.Cell] = true

	cell := h.Cell
	env.World.Tiles.Destructible.Clear(cell)
	TileDestroyed(env, cell, world.LayerDestructible, h.Tile)
	env.Detonator.Blast(BlastSpec{Origin: cell, Radius: d.Radius, Pierce: true, Source: h.Bomb})

	env.Tasks.Start(cell, taskName("dynamite", cell), func(_ *schedule.Task, yield func(schedule.Wait) bool) {
		if !yield(schedule.Sleep(d.Delay)) {
			return
		}
		for _, dir := range grid.Dirs {
			target := cell.Step(dir, d.Radius)
			if env.World.Tiles.Indestructible.Has(target) || env.World.IsCellOccupied(target, blockingActors) {
				continue
			}
			env.Detonator.Blast(BlastSpec{Origin: target, Radius: d.Radius, Pierce: true})
		}
	})
	return true
}
