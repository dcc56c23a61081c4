package handler

import (
	"github.com/blastgrid/server/internal/world"
)

// Breakable clears a destructible tile and optionally leaves something
// behind: an enemy, fireworks, a pickup.
type Breakable struct {
	Prefab string
	Sfx    string
	Volume float64
}

func (b *Breakable) DestructibleHit(env *Env, h Hit) bool {
	env.World.Tiles.Destructible.Clear(h.Cell)
	if b.Prefab != "" {
		env.World.SpawnAt(b.Prefab, h.Pos)
	}
	if b.Sfx != "" {
		env.Presenter.PlaySfx(b.Sfx, b.Volume)
	}
	TileDestroyed(env, h.Cell, world.LayerDestructible, h.Tile)
	return true
}
