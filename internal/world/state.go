package world

import (
	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/grid"
)

// Flags holds stage-wide toggles flipped by ground handlers.
type Flags struct {
	Blackout bool
}

// State is the simulation world: tile layers, bombs, explosion segments and
// dynamic actors. Single-goroutine access only (game loop), no locks.
type State struct {
	Conv     grid.Converter
	Tiles    *Tilemap
	Bombs    *Bombs
	Segments *Segments
	Flags    Flags

	pool      *ecs.EntityPool
	actors    *ecs.Store[Actor]
	occupancy *occupancyGrid
	prefabs   map[string]Mask
}

func NewState(conv grid.Converter) *State {
	pool := ecs.NewEntityPool()
	return &State{
		Conv:      conv,
		Tiles:     NewTilemap(),
		Bombs:     newBombs(pool, conv),
		Segments:  newSegments(pool),
		pool:      pool,
		actors:    ecs.NewStore[Actor](),
		occupancy: newOccupancyGrid(),
		prefabs:   make(map[string]Mask),
	}
}

// ── Occupancy query ────────────────────────────────────────────────

// IsAreaOccupied reports whether any cell overlapped by the rectangle of the
// given size centred on center holds an actor whose kind matches mask. When
// mask includes MaskBomb, live bombs count as well.
func (s *State) IsAreaOccupied(center, size grid.Pos, mask Mask) bool {
	for _, c := range s.Conv.CellsIn(center, size) {
		if s.IsCellOccupied(c, mask) {
			return true
		}
	}
	return false
}

// IsCellOccupied is IsAreaOccupied for exactly one cell.
func (s *State) IsCellOccupied(c grid.Cell, mask Mask) bool {
	if s.occupancy.any(c, mask) {
		return true
	}
	if mask&MaskBomb != 0 {
		if _, ok := s.Bombs.At(c); ok {
			return true
		}
	}
	return false
}

// TryFindBombAt returns the live bomb resolved to cell, if any.
func (s *State) TryFindBombAt(c grid.Cell) (*Bomb, bool) {
	return s.Bombs.At(c)
}

// TryFindDynamicEntityAt returns the lowest-ID actor in cell, if any.
func (s *State) TryFindDynamicEntityAt(c grid.Cell) (*Actor, bool) {
	return s.occupancy.first(c)
}

// ── Actors & spawning ──────────────────────────────────────────────

// RegisterPrefab sets the occupancy kind for actors spawned from prefab.
// Unregistered prefabs spawn as MaskItem.
func (s *State) RegisterPrefab(prefab string, kind Mask) {
	s.prefabs[prefab] = kind
}

// SpawnAt creates an actor from prefab at pos and returns its ID.
func (s *State) SpawnAt(prefab string, pos grid.Pos) ecs.EntityID {
	kind, ok := s.prefabs[prefab]
	if !ok {
		kind = MaskItem
	}
	return s.AddActor(kind, prefab, pos).ID
}

// AddActor registers a dynamic entity of the given kind.
func (s *State) AddActor(kind Mask, prefab string, pos grid.Pos) *Actor {
	a := &Actor{
		ID:     s.pool.Create(),
		Kind:   kind,
		Prefab: prefab,
		Pos:    pos,
		cell:   s.Conv.CellOf(pos),
	}
	s.actors.Set(a.ID, a)
	s.occupancy.occupy(a)
	return a
}

// MoveActor updates an actor's position and occupancy cell.
func (s *State) MoveActor(id ecs.EntityID, pos grid.Pos) bool {
	a, ok := s.actors.Get(id)
	if !ok {
		return false
	}
	s.occupancy.vacate(a)
	a.Pos = pos
	a.cell = s.Conv.CellOf(pos)
	s.occupancy.occupy(a)
	return true
}

// RemoveActor drops an actor. Unknown IDs are ignored.
func (s *State) RemoveActor(id ecs.EntityID) {
	a, ok := s.actors.Get(id)
	if !ok {
		return
	}
	s.occupancy.vacate(a)
	s.actors.Remove(id)
	s.pool.Release(id)
}

func (s *State) Actor(id ecs.EntityID) (*Actor, bool) { return s.actors.Get(id) }

// Actors returns every actor ordered by cell, then ID.
func (s *State) Actors() []*Actor {
	return s.actors.Sorted(func(a, b *Actor) bool { return a.cell.Less(b.cell) })
}

// ── Stage lifecycle ────────────────────────────────────────────────

// ResetStage clears tiles, bombs, segments, actors and flags. Prefab kinds
// survive; they are configuration, not stage state.
func (s *State) ResetStage() {
	s.Bombs.Clear()
	s.Segments.Clear()
	for _, a := range s.Actors() {
		s.RemoveActor(a.ID)
	}
	s.occupancy.reset()
	s.Tiles.reset()
	s.Flags = Flags{}
}

// Pool exposes the shared entity ID pool.
func (s *State) Pool() *ecs.EntityPool { return s.pool }
