package handler_test

import (
	"testing"
	"time"

	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/core/event"
	"github.com/blastgrid/server/internal/explosion"
	"github.com/blastgrid/server/internal/fx"
	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/handler"
	"github.com/blastgrid/server/internal/schedule"
	"github.com/blastgrid/server/internal/world"
	"go.uber.org/zap"
)

// sim is a small world wired the way blastsim wires it, minus the systems.
type sim struct {
	w     *world.State
	reg   *handler.Registry
	env   *handler.Env
	rec   *fx.Recorder
	clock *schedule.Scheduler
	p     *explosion.Propagator
}

func newSim(t *testing.T, groups ...handler.Group) *sim {
	t.Helper()
	w := world.NewState(grid.Converter{CellSize: 1})
	reg := handler.NewRegistry(zap.NewNop())
	reg.Add(groups...)
	reg.Rebuild()

	clock := schedule.NewScheduler()
	rec := &fx.Recorder{}
	env := &handler.Env{
		World:     w,
		Log:       zap.NewNop(),
		Clock:     clock,
		Tasks:     schedule.NewTasks[grid.Cell](clock, nil),
		BombTasks: schedule.NewTasks[ecs.EntityID](clock, nil),
		Presenter: rec,
		Bus:       event.NewBus(),
	}
	p := explosion.New(env, reg, explosion.Options{
		SegmentDuration: 500 * time.Millisecond,
		Bomb:            explosion.BombDefaults{Fuse: time.Second, Radius: 1},
	})
	return &sim{w: w, reg: reg, env: env, rec: rec, clock: clock, p: p}
}

func (s *sim) start() { s.reg.StartAll(s.env) }

// floor lays ground tile over the square [-n, n]².
func (s *sim) floor(tile world.TileID, n int) {
	for y := -n; y <= n; y++ {
		for x := -n; x <= n; x++ {
			s.w.Tiles.Ground.Set(grid.Cell{X: x, Y: y}, tile)
		}
	}
}

func (s *sim) bomb(x, y, radius int) *world.Bomb {
	return s.p.PlaceBomb(world.BombSpec{Pos: s.w.Conv.Center(grid.Cell{X: x, Y: y}), Radius: radius})
}

func (s *sim) detonate(b *world.Bomb) bool {
	return s.p.Detonate(b, handler.DetonateOpts{Cause: event.CauseAPI})
}

// expire drops every live segment so later blasts are counted fresh.
func (s *sim) expire() { s.w.Segments.Tick(time.Hour) }

// events collects emitted events of type T that are waiting on the bus.
func events[T any](s *sim) []T {
	var out []T
	event.Subscribe(s.env.Bus, func(e T) { out = append(out, e) })
	s.env.Bus.SwapBuffers()
	s.env.Bus.DispatchAll()
	return out
}

func c(x, y int) grid.Cell { return grid.Cell{X: x, Y: y} }
