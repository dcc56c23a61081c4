package handler

import (
	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/world"
)

// Hit describes one cell an explosion reached.
type Hit struct {
	Bomb   *world.Bomb // nil for handler-made blasts
	Origin grid.Cell   // blast origin
	Cell   grid.Cell
	Pos    grid.Pos // world position of Cell's center
	Tile   world.TileID
	Pierce bool
}

// A handler implements any subset of the capabilities below. The registry
// discovers them with type assertions when it is rebuilt.

// DestructibleHitter reacts to fire reaching a destructible tile. Returning
// true means the hit was handled and the default reaction is skipped.
type DestructibleHitter interface {
	DestructibleHit(env *Env, h Hit) bool
}

// IndestructibleHitter reacts to fire stopping at an indestructible tile.
// Propagation stops regardless of the result.
type IndestructibleHitter interface {
	IndestructibleHit(env *Env, h Hit) bool
}

// ExplosionModifier may raise the radius or enable pierce of a bomb going
// off on its ground tile. Only the origin cell is consulted.
type ExplosionModifier interface {
	TryModifyExplosion(env *Env, h Hit, radius *int, pierce *bool) bool
}

// BombPlacedListener is told once when a bomb is placed on its ground tile.
type BombPlacedListener interface {
	OnBombPlaced(env *Env, h Hit, b *world.Bomb)
}

// BombAtListener is told when an idle bomb comes to rest on its ground tile.
type BombAtListener interface {
	OnBombAt(env *Env, h Hit, b *world.Bomb)
}

// GroundBurnListener is told about every cell of its ground tile that
// receives an explosion segment. It never affects propagation.
type GroundBurnListener interface {
	OnExplosionPass(env *Env, h Hit)
}

// Starter is run once per stage, after the layout is loaded. Handlers use it
// to reset per-stage state and schedule periodic work.
type Starter interface {
	Start(env *Env)
}

// Capability names, used for diagnostics and metrics labels.
const (
	CapDestructible   = "destructible"
	CapIndestructible = "indestructible"
	CapModifier       = "modifier"
	CapPlaced         = "placed"
	CapAt             = "at"
	CapBurn           = "burn"
)

// Capabilities lists the capability names h implements.
func Capabilities(h any) []string {
	var out []string
	if _, ok := h.(DestructibleHitter); ok {
		out = append(out, CapDestructible)
	}
	if _, ok := h.(IndestructibleHitter); ok {
		out = append(out, CapIndestructible)
	}
	if _, ok := h.(ExplosionModifier); ok {
		out = append(out, CapModifier)
	}
	if _, ok := h.(BombPlacedListener); ok {
		out = append(out, CapPlaced)
	}
	if _, ok := h.(BombAtListener); ok {
		out = append(out, CapAt)
	}
	if _, ok := h.(GroundBurnListener); ok {
		out = append(out, CapBurn)
	}
	return out
}
