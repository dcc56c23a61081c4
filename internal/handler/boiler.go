package handler

import (
	"time"

	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/core/event"
	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/schedule"
	"github.com/blastgrid/server/internal/world"
)

// Boiler ground launches a bomb placed on it: after Delay the bomb is
// shoved one cell in Direction and goes off where it lands. Each bomb is
// launched at most once.
type Boiler struct {
	Direction grid.Dir
	Delay     time.Duration
	Duration  time.Duration
	Steps     int

	fired map[ecs.EntityID]bool
}

func NewBoiler(dir grid.Dir, delay, duration time.Duration, steps int) *Boiler {
	if steps < 1 {
		steps = 1
	}
	return &Boiler{
		Direction: dir,
		Delay:     delay,
		Duration:  duration,
		Steps:     steps,
		fired:     make(map[ecs.EntityID]bool),
	}
}

func (bo *Boiler) Start(*Env) {
	clear(bo.fired)
}

func (bo *Boiler) OnBombPlaced(env *Env, _ Hit, b *world.Bomb) { bo.launch(env, b) }

func (bo *Boiler) launch(env *Env, b *world.Bomb) {
	if bo.fired[b.ID] {
		return
	}
	bo.fired[b.ID] = true
	bombs := env.World.Bombs

	env.BombTasks.Start(b.ID, "boiler", func(t *schedule.Task, yield func(schedule.Wait) bool) {
		if !yield(schedule.Sleep(bo.Delay)) {
			return
		}
		if !bombs.Contains(b) || !b.Armed() {
			t.Abandon("bomb gone or moving")
			return
		}
		force := DetonateOpts{Force: true, Cause: event.CauseForced}
		to := b.Cell().Step(bo.Direction, 1)
		if !cellFree(env.World, to) {
			env.Detonator.Detonate(b, force)
			return
		}

		b.SetMoveState(world.MoveKicked)
		env.Presenter.FreezeBomb(b.ID, true)
		defer func() {
			if bombs.Contains(b) && b.MoveState() == world.MoveKicked {
				b.SetMoveState(world.MoveIdle)
				env.Presenter.FreezeBomb(b.ID, false)
			}
		}()

		from, dest := b.Position(), env.World.Conv.Center(to)
		for i := 1; i <= bo.Steps; i++ {
			if !yield(schedule.Sleep(bo.Duration / time.Duration(bo.Steps))) {
				return
			}
			if !bombs.Contains(b) || b.HasExploded() {
				return
			}
			bombs.Move(b, from.Lerp(dest, float64(i)/float64(bo.Steps)))
		}

		b.SetMoveState(world.MoveIdle)
		env.Presenter.FreezeBomb(b.ID, false)
		env.Detonator.Detonate(b, force)
	})
}
