package world

import (
	"fmt"
	"time"

	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/grid"
)

// MoveState is the movement sub-state of a bomb. Anything other than
// MoveIdle suppresses fuse detonation, chain detonation by incoming fire and
// ground bomb-at notifications.
type MoveState uint8

const (
	MoveIdle MoveState = iota
	MoveKicked
	MovePunched
	MoveMagnetPulled
)

func (s MoveState) String() string {
	switch s {
	case MoveIdle:
		return "idle"
	case MoveKicked:
		return "kicked"
	case MovePunched:
		return "punched"
	case MoveMagnetPulled:
		return "magnet"
	default:
		return fmt.Sprintf("MoveState(%d)", uint8(s))
	}
}

// Bomb is a live bomb entity. Position and cell change only through
// Bombs.Move so the registry's cell index stays in sync.
type Bomb struct {
	ID     ecs.EntityID
	Owner  ecs.EntityID
	Fuse   time.Duration // remaining
	Radius int
	Pierce bool

	pos      grid.Pos
	cell     grid.Cell
	exploded bool
	move     MoveState
}

func (b *Bomb) Position() grid.Pos { return b.pos }

// Cell is the resolved cell of the bomb's current position.
func (b *Bomb) Cell() grid.Cell { return b.cell }

func (b *Bomb) HasExploded() bool { return b.exploded }

// MarkExploded flips HasExploded once. It returns false when the bomb had
// already exploded.
func (b *Bomb) MarkExploded() bool {
	if b.exploded {
		return false
	}
	b.exploded = true
	return true
}

func (b *Bomb) MoveState() MoveState { return b.move }

func (b *Bomb) SetMoveState(s MoveState) { b.move = s }

func (b *Bomb) Idle() bool { return b.move == MoveIdle }

// Armed reports whether the bomb can still be detonated by fuse or fire.
func (b *Bomb) Armed() bool { return !b.exploded && b.move == MoveIdle }

// BombSpec describes a bomb to place.
type BombSpec struct {
	Owner  ecs.EntityID
	Pos    grid.Pos
	Fuse   time.Duration
	Radius int
	Pierce bool
}

// Bombs tracks every live bomb, indexed by ID and by resolved cell.
type Bombs struct {
	pool   *ecs.EntityPool
	conv   grid.Converter
	byID   *ecs.Store[Bomb]
	byCell map[grid.Cell][]*Bomb
}

func newBombs(pool *ecs.EntityPool, conv grid.Converter) *Bombs {
	return &Bombs{
		pool:   pool,
		conv:   conv,
		byID:   ecs.NewStore[Bomb](),
		byCell: make(map[grid.Cell][]*Bomb),
	}
}

// Add creates and registers a bomb.
func (r *Bombs) Add(spec BombSpec) *Bomb {
	b := &Bomb{
		ID:     r.pool.Create(),
		Owner:  spec.Owner,
		Fuse:   spec.Fuse,
		Radius: spec.Radius,
		Pierce: spec.Pierce,
		pos:    spec.Pos,
		cell:   r.conv.CellOf(spec.Pos),
	}
	r.byID.Set(b.ID, b)
	r.index(b)
	return b
}

// Remove unregisters b. Removing an unknown bomb is a no-op.
func (r *Bombs) Remove(b *Bomb) {
	if b == nil || !r.byID.Has(b.ID) {
		return
	}
	r.unindex(b)
	r.byID.Remove(b.ID)
	r.pool.Release(b.ID)
}

// Move sets the logical position of a registered bomb and re-resolves its
// cell. External movers (kick, punch, magnet, boiler) go through here. It
// returns true when the resolved cell changed.
func (r *Bombs) Move(b *Bomb, pos grid.Pos) bool {
	if b == nil || !r.byID.Has(b.ID) {
		return false
	}
	cell := r.conv.CellOf(pos)
	b.pos = pos
	if cell == b.cell {
		return false
	}
	r.unindex(b)
	b.cell = cell
	r.index(b)
	return true
}

func (r *Bombs) Get(id ecs.EntityID) (*Bomb, bool) { return r.byID.Get(id) }

// Contains reports whether b is still registered.
func (r *Bombs) Contains(b *Bomb) bool {
	if b == nil {
		return false
	}
	cur, ok := r.byID.Get(b.ID)
	return ok && cur == b
}

// At returns the first live (not yet exploded) bomb resolved to cell.
func (r *Bombs) At(cell grid.Cell) (*Bomb, bool) {
	for _, b := range r.byCell[cell] {
		if !b.exploded {
			return b, true
		}
	}
	return nil, false
}

// ArmedAt returns the idle, unexploded bombs resolved to cell. The slice is
// a copy, so callers may detonate while ranging over it.
func (r *Bombs) ArmedAt(cell grid.Cell) []*Bomb {
	var out []*Bomb
	for _, b := range r.byCell[cell] {
		if b.Armed() {
			out = append(out, b)
		}
	}
	return out
}

// List returns live bombs in scan order (y, x, then ID).
func (r *Bombs) List() []*Bomb {
	return r.byID.Sorted(func(a, b *Bomb) bool { return a.cell.Less(b.cell) })
}

func (r *Bombs) Len() int { return r.byID.Len() }

// Clear removes every bomb (stage-end cleanup).
func (r *Bombs) Clear() {
	for _, b := range r.List() {
		r.Remove(b)
	}
}

func (r *Bombs) index(b *Bomb) {
	r.byCell[b.cell] = append(r.byCell[b.cell], b)
}

func (r *Bombs) unindex(b *Bomb) {
	list := r.byCell[b.cell]
	for i, other := range list {
		if other == b {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.byCell, b.cell)
		return
	}
	r.byCell[b.cell] = list
}
