package handler

import (
	"time"

	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/schedule"
	"github.com/blastgrid/server/internal/world"
)

// Resurrect breaks like any destructible but grows back after Delay once
// the cell is clear. Optional warning and respawn tiles are shown first.
type Resurrect struct {
	Delay       time.Duration
	Poll        time.Duration
	Warning     time.Duration
	Animation   time.Duration
	WarningTile world.TileID
	RespawnTile world.TileID
}

func (r *Resurrect) DestructibleHit(env *Env, h Hit) bool {
	cell, original := h.Cell, h.Tile
	env.World.Tiles.Destructible.Clear(cell)
	TileDestroyed(env, cell, world.LayerDestructible, original)

	env.Tasks.Start(cell, taskName("resurrect", cell), func(t *schedule.Task, yield func(schedule.Wait) bool) {
		if !yield(schedule.Sleep(r.Delay)) {
			return
		}
		isClear := func() bool { return !env.World.IsCellOccupied(cell, world.MaskBlocking) }

		for {
			if !yield(schedule.Until(isClear, r.Poll)) {
				return
			}
			if !r.vacant(env, cell) {
				t.Abandon("cell taken")
				return
			}
			if r.WarningTile != "" && r.Warning > 0 {
				env.Presenter.ShowTile(cell, r.WarningTile, r.Warning)
				if !yield(schedule.Sleep(r.Warning)) {
					return
				}
				if !r.vacant(env, cell) {
					t.Abandon("cell taken")
					return
				}
			}
			if r.RespawnTile != "" && r.Animation > 0 {
				env.Presenter.ShowTile(cell, r.RespawnTile, r.Animation)
				if !yield(schedule.Sleep(r.Animation)) {
					return
				}
				if !r.vacant(env, cell) {
					t.Abandon("cell taken")
					return
				}
			}
			if !isClear() {
				continue
			}
			env.World.Tiles.Destructible.Set(cell, original)
			env.Presenter.ShowTile(cell, original, 0)
			return
		}
	})
	return true
}

// vacant reports whether the tile may still grow back: nothing else was put
// on the destructible or indestructible layer meanwhile.
func (r *Resurrect) vacant(env *Env, c grid.Cell) bool {
	return !env.World.Tiles.Blocked(c)
}
