package handler

import (
	"time"

	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/schedule"
)

// Push slides an indestructible tile one cell away from the blast origin.
// The move only lands if source and destination are both still valid when
// the animation ends; otherwise the tile stays and slides back visually.
type Push struct {
	Duration time.Duration
}

func (p *Push) IndestructibleHit(env *Env, h Hit) bool {
	dir, ok := grid.DirBetween(h.Origin, h.Cell)
	if !ok {
		return false
	}
	from, to, tile := h.Cell, h.Cell.Step(dir, 1), h.Tile
	if !cellFree(env.World, to) {
		return false
	}

	env.Presenter.PlayTileMove(from, to, tile, p.Duration)
	env.Tasks.Start(from, taskName("push", from), func(t *schedule.Task, yield func(schedule.Wait) bool) {
		if !yield(schedule.Sleep(p.Duration)) {
			return
		}
		layer := env.World.Tiles.Indestructible
		cur, ok := layer.Get(from)
		switch {
		case !ok || cur != tile:
			t.Abandon("source tile changed")
		case !cellFree(env.World, to):
			env.Presenter.PlayTileMove(to, from, tile, p.Duration)
			t.Abandon("destination blocked")
		default:
			layer.Clear(from)
			layer.Set(to, tile)
		}
	})
	return true
}
