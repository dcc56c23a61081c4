package handler

import (
	"github.com/blastgrid/server/internal/world"
	"go.uber.org/zap"
)

// Group binds a handler to a set of tile identities.
type Group struct {
	Name    string
	Tiles   []world.TileID
	Handler any
}

// Duplicate records a tile bound by more than one group for the same
// capability. The later group wins.
type Duplicate struct {
	Tile       world.TileID
	Capability string
	Replaced   string // group that lost
	Winner     string
}

// Diagnostics summarises a rebuild. Configuration problems are reported here
// and logged, never returned as errors.
type Diagnostics struct {
	Groups     int
	Bindings   int // capability entries written
	Duplicates []Duplicate
	EmptyTiles int
	Inert      []string // groups whose handler implements no capability
}

// Registry maps tile identities to handler capabilities. Lookups are O(1).
// Single-goroutine access only (game loop).
type Registry struct {
	log    *zap.Logger
	groups []Group

	destructible   map[world.TileID]DestructibleHitter
	indestructible map[world.TileID]IndestructibleHitter
	modifier       map[world.TileID]ExplosionModifier
	placed         map[world.TileID]BombPlacedListener
	at             map[world.TileID]BombAtListener
	burn           map[world.TileID]GroundBurnListener
	starters       []Starter
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{log: log}
	r.clear()
	return r
}

// Add declares a group. It takes effect on the next Rebuild.
func (r *Registry) Add(groups ...Group) {
	r.groups = append(r.groups, groups...)
}

// Groups returns the declared groups in order.
func (r *Registry) Groups() []Group { return r.groups }

func (r *Registry) clear() {
	r.destructible = make(map[world.TileID]DestructibleHitter)
	r.indestructible = make(map[world.TileID]IndestructibleHitter)
	r.modifier = make(map[world.TileID]ExplosionModifier)
	r.placed = make(map[world.TileID]BombPlacedListener)
	r.at = make(map[world.TileID]BombAtListener)
	r.burn = make(map[world.TileID]GroundBurnListener)
	r.starters = nil
}

// Rebuild clears every capability map and repopulates them from the groups
// in declaration order. Rebuilding twice yields the same state.
func (r *Registry) Rebuild() Diagnostics {
	r.clear()
	diag := Diagnostics{Groups: len(r.groups)}
	owner := make(map[string]map[world.TileID]string)
	seenStarter := make(map[any]bool)

	note := func(cap string, tile world.TileID, group string) {
		m := owner[cap]
		if m == nil {
			m = make(map[world.TileID]string)
			owner[cap] = m
		}
		if prev, ok := m[tile]; ok {
			diag.Duplicates = append(diag.Duplicates, Duplicate{
				Tile: tile, Capability: cap, Replaced: prev, Winner: group,
			})
		}
		m[tile] = group
		diag.Bindings++
	}

	for _, g := range r.groups {
		caps := Capabilities(g.Handler)
		st, isStarter := g.Handler.(Starter)
		if len(caps) == 0 && !isStarter {
			diag.Inert = append(diag.Inert, g.Name)
		}
		if isStarter && !seenStarter[g.Handler] {
			seenStarter[g.Handler] = true
			r.starters = append(r.starters, st)
		}

		for _, tile := range g.Tiles {
			if tile == "" {
				diag.EmptyTiles++
				continue
			}
			if h, ok := g.Handler.(DestructibleHitter); ok {
				r.destructible[tile] = h
				note(CapDestructible, tile, g.Name)
			}
			if h, ok := g.Handler.(IndestructibleHitter); ok {
				r.indestructible[tile] = h
				note(CapIndestructible, tile, g.Name)
			}
			if h, ok := g.Handler.(ExplosionModifier); ok {
				r.modifier[tile] = h
				note(CapModifier, tile, g.Name)
			}
			if h, ok := g.Handler.(BombPlacedListener); ok {
				r.placed[tile] = h
				note(CapPlaced, tile, g.Name)
			}
			if h, ok := g.Handler.(BombAtListener); ok {
				r.at[tile] = h
				note(CapAt, tile, g.Name)
			}
			if h, ok := g.Handler.(GroundBurnListener); ok {
				r.burn[tile] = h
				note(CapBurn, tile, g.Name)
			}
		}
	}

	for _, d := range diag.Duplicates {
		r.log.Warn("duplicate tile binding",
			zap.String("tile", string(d.Tile)),
			zap.String("capability", d.Capability),
			zap.String("replaced", d.Replaced),
			zap.String("winner", d.Winner),
		)
	}
	if diag.EmptyTiles > 0 {
		r.log.Warn("empty tile identities skipped", zap.Int("count", diag.EmptyTiles))
	}
	for _, name := range diag.Inert {
		r.log.Warn("handler group has no capabilities", zap.String("group", name))
	}
	r.log.Debug("handler registry rebuilt",
		zap.Int("groups", diag.Groups),
		zap.Int("bindings", diag.Bindings),
	)
	return diag
}

func (r *Registry) Destructible(tile world.TileID) (DestructibleHitter, bool) {
	h, ok := r.destructible[tile]
	return h, ok
}

func (r *Registry) Indestructible(tile world.TileID) (IndestructibleHitter, bool) {
	h, ok := r.indestructible[tile]
	return h, ok
}

func (r *Registry) Modifier(tile world.TileID) (ExplosionModifier, bool) {
	h, ok := r.modifier[tile]
	return h, ok
}

func (r *Registry) Placed(tile world.TileID) (BombPlacedListener, bool) {
	h, ok := r.placed[tile]
	return h, ok
}

func (r *Registry) At(tile world.TileID) (BombAtListener, bool) {
	h, ok := r.at[tile]
	return h, ok
}

func (r *Registry) Burn(tile world.TileID) (GroundBurnListener, bool) {
	h, ok := r.burn[tile]
	return h, ok
}

// Bound reports whether tile has any capability at all.
func (r *Registry) Bound(tile world.TileID) bool {
	if _, ok := r.destructible[tile]; ok {
		return true
	}
	if _, ok := r.indestructible[tile]; ok {
		return true
	}
	if _, ok := r.modifier[tile]; ok {
		return true
	}
	if _, ok := r.placed[tile]; ok {
		return true
	}
	if _, ok := r.at[tile]; ok {
		return true
	}
	_, ok := r.burn[tile]
	return ok
}

// Starters lists distinct handlers with per-stage start hooks, in group order.
func (r *Registry) Starters() []Starter { return r.starters }

// StartAll runs every Starter with panic recovery.
func (r *Registry) StartAll(env *Env) {
	env.Defaults()
	for _, s := range r.starters {
		s := s
		Safe(env.Log, "start", "", func() { s.Start(env) })
	}
}
