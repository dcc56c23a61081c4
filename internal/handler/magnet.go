package handler

import (
	"slices"
	"time"

	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/schedule"
	"github.com/blastgrid/server/internal/world"
)

// Magnet is an indestructible tile that periodically pulls the first idle
// bomb it sees along its facing toward itself. Fire hitting it rotates the
// facing clockwise.
type Magnet struct {
	Tiles    []world.TileID
	Initial  grid.Dir
	Interval time.Duration
	Range    int
	Step     time.Duration

	facing map[grid.Cell]grid.Dir
	scan   *schedule.Handle
}

func NewMagnet(tiles []world.TileID, facing grid.Dir, interval time.Duration, rng int, step time.Duration) *Magnet {
	return &Magnet{
		Tiles:    tiles,
		Initial:  facing,
		Interval: interval,
		Range:    rng,
		Step:     step,
		facing:   make(map[grid.Cell]grid.Dir),
	}
}

// Start collects the magnet cells of the loaded stage and schedules the
// periodic scan.
func (m *Magnet) Start(env *Env) {
	m.scan.Cancel()
	clear(m.facing)
	for _, c := range env.World.Tiles.Indestructible.CellsWith(m.Tiles...) {
		m.facing[c] = m.Initial
	}
	m.scan = env.Clock.ScheduleRepeating(m.Interval, func() { m.Scan(env) })
}

// Facing returns the current facing of the magnet at c.
func (m *Magnet) Facing(c grid.Cell) (grid.Dir, bool) {
	d, ok := m.facing[c]
	return d, ok
}

func (m *Magnet) IndestructibleHit(_ *Env, h Hit) bool {
	d, ok := m.facing[h.Cell]
	if !ok {
		d = m.Initial
	}
	m.facing[h.Cell] = d.Clockwise()
	return true
}

// Scan looks along every magnet's facing and starts a pull on the first
// idle bomb further than one cell away. Magnets scan in cell order.
func (m *Magnet) Scan(env *Env) {
	cells := make([]grid.Cell, 0, len(m.facing))
	for c := range m.facing {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, func(a, b grid.Cell) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})

	for _, c := range cells {
		tile, ok := env.World.Tiles.Indestructible.Get(c)
		if !ok || !slices.Contains(m.Tiles, tile) || env.Tasks.Pending(c) {
			continue
		}
		dir := m.facing[c]
		for i := 1; i <= m.Range; i++ {
			p := c.Step(dir, i)
			if env.World.Tiles.Blocked(p) {
				break
			}
			b, ok := env.World.Bombs.At(p)
			if !ok {
				continue
			}
			if i > 1 && b.Idle() {
				m.pull(env, c, dir, b)
			}
			break
		}
	}
}

func (m *Magnet) pull(env *Env, magnet grid.Cell, dir grid.Dir, b *world.Bomb) {
	bombs := env.World.Bombs
	toward := dir.Opposite()
	b.SetMoveState(world.MoveMagnetPulled)

	env.Tasks.Start(magnet, taskName("magnet", magnet), func(t *schedule.Task, yield func(schedule.Wait) bool) {
		defer func() {
			if bombs.Contains(b) && b.MoveState() == world.MoveMagnetPulled {
				b.SetMoveState(world.MoveIdle)
			}
		}()
		for {
			if !yield(schedule.Sleep(m.Step)) {
				return
			}
			if !bombs.Contains(b) || b.HasExploded() {
				t.Abandon("bomb gone")
				return
			}
			next := b.Cell().Step(toward, 1)
			if next == magnet || !cellFree(env.World, next) {
				return
			}
			bombs.Move(b, env.World.Conv.Center(next))
			if next.Step(toward, 1) == magnet {
				return
			}
		}
	})
}
