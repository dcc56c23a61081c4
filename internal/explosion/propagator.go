// Package explosion walks explosion crosses over the tile layers and
// dispatches tile reactions to the handler registry.
package explosion

import (
	"time"

	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/core/event"
	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/handler"
	"github.com/blastgrid/server/internal/world"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options are the tunables of a Propagator.
type Options struct {
	SegmentDuration time.Duration
	DebrisPrefab    string // spawned where the default reaction clears a tile
	BreakSfx        string
	Bomb            BombDefaults
}

// BombDefaults fill in BombSpec fields left at their zero value.
type BombDefaults struct {
	Fuse   time.Duration
	Radius int
	Pierce bool
}

// Propagator resolves detonations. All work happens synchronously on the
// game loop; handlers may re-enter it through handler.Detonator.
type Propagator struct {
	env  *handler.Env
	reg  *handler.Registry
	opts Options

	chain    chain
	notified map[ecs.EntityID]grid.Cell // last cell a bomb-at notification went out for
}

// chain tracks the root detonation currently being resolved.
type chain struct {
	active bool
	id     uuid.UUID
	depth  int
}

// New creates a propagator and installs it as env's Detonator.
func New(env *handler.Env, reg *handler.Registry, opts Options) *Propagator {
	env.Defaults()
	p := &Propagator{
		env:      env,
		reg:      reg,
		opts:     opts,
		notified: make(map[ecs.EntityID]grid.Cell),
	}
	env.Detonator = p
	return p
}

// Env returns the handler environment the propagator dispatches with.
func (p *Propagator) Env() *handler.Env { return p.env }

// Detonate explodes b. It is a no-op for nil or already exploded bombs, and
// for bombs that are moving unless opts.Force is set, in which case the
// movement is cancelled first. It reports whether b went off.
func (p *Propagator) Detonate(b *world.Bomb, opts handler.DetonateOpts) bool {
	if b == nil || b.HasExploded() {
		return false
	}
	if !b.Idle() {
		if !opts.Force {
			return false
		}
		b.SetMoveState(world.MoveIdle)
		p.env.Presenter.FreezeBomb(b.ID, false)
		if p.env.BombTasks != nil {
			p.env.BombTasks.Cancel(b.ID)
		}
	}
	if !b.MarkExploded() {
		return false
	}
	w := p.env.World
	w.Bombs.Remove(b)
	delete(p.notified, b.ID)
	origin := b.Cell()

	if !p.chain.active {
		p.chain = chain{active: true, id: uuid.New()}
		defer func() { p.chain = chain{} }()
	} else {
		p.chain.depth++
		defer func() { p.chain.depth-- }()
	}
	blastID, depth := p.chain.id, p.chain.depth

	radius, pierce := b.Radius, b.Pierce
	if tile, ok := w.Tiles.Ground.Get(origin); ok {
		if h, ok := p.reg.Modifier(tile); ok {
			hit := p.hit(b, origin, origin, tile, pierce)
			p.env.Metrics.HandlerCall(handler.CapModifier)
			handler.Safe(p.env.Log, handler.CapModifier, tile, func() {
				h.TryModifyExplosion(p.env, hit, &radius, &pierce)
			})
		}
	}
	if radius < 0 {
		radius = 0
	}

	n := p.walk(origin, radius, pierce, b, b.ID)

	cause := opts.Cause
	if cause == "" {
		cause = event.CauseAPI
	}
	p.env.Metrics.Detonation(string(cause))
	p.env.Metrics.SetLiveBombs(w.Bombs.Len())
	event.Emit(p.env.Bus, event.Detonated{
		BlastID:  blastID,
		Depth:    depth,
		BombID:   b.ID,
		Owner:    b.Owner,
		Cell:     origin,
		Radius:   radius,
		Pierce:   pierce,
		Cause:    cause,
		Segments: n,
		At:       p.now(),
	})
	p.env.Log.Debug("bomb detonated",
		zap.Uint64("bomb", uint64(b.ID)),
		zap.Stringer("cell", origin),
		zap.Int("radius", radius),
		zap.Bool("pierce", pierce),
		zap.String("cause", string(cause)),
		zap.Int("depth", depth),
		zap.Int("segments", n),
	)
	return true
}

// Blast walks a cross that no bomb owns. Ground modifiers are not consulted.
func (p *Propagator) Blast(spec handler.BlastSpec) {
	if spec.Radius < 0 {
		spec.Radius = 0
	}
	p.walk(spec.Origin, spec.Radius, spec.Pierce, spec.Source, 0)
}

// Reset forgets per-stage bookkeeping.
func (p *Propagator) Reset() {
	p.chain = chain{}
	clear(p.notified)
}

func (p *Propagator) now() time.Duration {
	if p.env.Clock == nil {
		return 0
	}
	return p.env.Clock.Now()
}

func (p *Propagator) hit(b *world.Bomb, origin, cell grid.Cell, tile world.TileID, pierce bool) handler.Hit {
	return handler.Hit{
		Bomb:   b,
		Origin: origin,
		Cell:   cell,
		Pos:    p.env.World.Conv.Center(cell),
		Tile:   tile,
		Pierce: pierce,
	}
}

// walk places the Start segment and the four arms. It returns the number of
// segments placed or refreshed.
func (p *Propagator) walk(origin grid.Cell, radius int, pierce bool, src *world.Bomb, owner ecs.EntityID) int {
	a := arm{p: p, origin: origin, src: src, owner: owner, pierce: pierce}
	a.place(origin, grid.Up, world.SegmentStart)
	p.chainAt(origin)
	for _, dir := range grid.Dirs {
		a.dir = dir
		a.run(radius)
	}
	return a.placed
}

// arm walks one direction. A segment is held back until the next step
// resolves, so a cell right before a stop is placed as End.
type arm struct {
	p      *Propagator
	origin grid.Cell
	dir    grid.Dir
	src    *world.Bomb
	owner  ecs.EntityID
	pierce bool

	pending    grid.Cell
	hasPending bool
	placed     int
}

func (a *arm) run(radius int) {
	w := a.p.env.World
	reg := a.p.reg
	env := a.p.env

	for step := 1; step <= radius; step++ {
		cell := a.origin.Step(a.dir, step)
		class := world.SegmentMiddle
		if step == radius {
			class = world.SegmentEnd
		}

		if tile, ok := w.Tiles.Indestructible.Get(cell); ok {
			if h, ok := reg.Indestructible(tile); ok {
				hit := a.p.hit(a.src, a.origin, cell, tile, a.pierce)
				env.Metrics.HandlerCall(handler.CapIndestructible)
				handler.Safe(env.Log, handler.CapIndestructible, tile, func() {
					h.IndestructibleHit(env, hit)
				})
			}
			a.flush(world.SegmentEnd)
			return
		}

		if tile, ok := w.Tiles.Destructible.Get(cell); ok {
			handled := false
			if h, ok := reg.Destructible(tile); ok {
				hit := a.p.hit(a.src, a.origin, cell, tile, a.pierce)
				env.Metrics.HandlerCall(handler.CapDestructible)
				handler.Safe(env.Log, handler.CapDestructible, tile, func() {
					handled = h.DestructibleHit(env, hit)
				})
			}
			if !handled {
				a.p.breakTile(cell, tile)
			}
			switch {
			case handled && !a.pierce:
				a.flush(world.SegmentEnd)
				return
			case !a.pierce:
				a.flush(world.SegmentMiddle)
				a.hold(cell)
				a.flush(world.SegmentEnd)
				return
			}
			a.flush(world.SegmentMiddle)
			a.hold(cell)
			if class == world.SegmentEnd {
				a.flush(class)
			}
			continue
		}

		a.flush(world.SegmentMiddle)
		a.p.chainAt(cell)
		a.hold(cell)
		if class == world.SegmentEnd {
			a.flush(class)
		}
	}
	a.flush(world.SegmentEnd)
}

func (a *arm) hold(cell grid.Cell) {
	a.pending, a.hasPending = cell, true
}

// flush places the held segment, if any, with the given class.
func (a *arm) flush(class world.SegmentClass) {
	if !a.hasPending {
		return
	}
	a.hasPending = false
	a.place(a.pending, a.dir, class)
}

func (a *arm) place(cell grid.Cell, dir grid.Dir, class world.SegmentClass) {
	env := a.p.env
	w := env.World
	life := a.p.opts.SegmentDuration

	seg, _ := w.Segments.Place(cell, dir, class, life, a.owner)
	a.placed++
	env.Metrics.Segment()
	env.Presenter.PlaySegment(cell, seg.Dir, seg.Class, life)
	event.Emit(env.Bus, event.SegmentPlaced{Cell: cell, Dir: seg.Dir, Class: seg.Class, Origin: a.owner})

	if tile, ok := w.Tiles.Ground.Get(cell); ok {
		if h, ok := a.p.reg.Burn(tile); ok {
			hit := a.p.hit(a.src, a.origin, cell, tile, a.pierce)
			env.Metrics.HandlerCall(handler.CapBurn)
			handler.Safe(env.Log, handler.CapBurn, tile, func() {
				h.OnExplosionPass(env, hit)
			})
		}
	}
}

// chainAt sets off every idle bomb the fire reaches on cell.
func (p *Propagator) chainAt(cell grid.Cell) {
	for _, b := range p.env.World.Bombs.ArmedAt(cell) {
		p.Detonate(b, handler.DetonateOpts{Cause: event.CauseChain})
	}
}

// breakTile is the default destructible reaction.
func (p *Propagator) breakTile(cell grid.Cell, tile world.TileID) {
	w := p.env.World
	w.Tiles.Destructible.Clear(cell)
	if p.opts.DebrisPrefab != "" {
		w.SpawnAt(p.opts.DebrisPrefab, w.Conv.Center(cell))
	}
	if p.opts.BreakSfx != "" {
		p.env.Presenter.PlaySfx(p.opts.BreakSfx, 1)
	}
	handler.TileDestroyed(p.env, cell, world.LayerDestructible, tile)
}
