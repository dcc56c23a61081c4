package handler

import (
	"fmt"

	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/core/event"
	"github.com/blastgrid/server/internal/fx"
	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/metrics"
	"github.com/blastgrid/server/internal/schedule"
	"github.com/blastgrid/server/internal/scripting"
	"github.com/blastgrid/server/internal/world"
	"go.uber.org/zap"
)

// DetonateOpts controls a detonation request.
type DetonateOpts struct {
	Force bool // cancel movement and detonate even if the bomb is not idle
	Cause event.Cause
}

// BlastSpec is a handler-made explosion cross with no bomb behind it.
type BlastSpec struct {
	Origin grid.Cell
	Radius int
	Pierce bool
	Source *world.Bomb // bomb whose fire caused this blast, if any
}

// Detonator is the explosion surface handlers may call back into.
type Detonator interface {
	Detonate(b *world.Bomb, opts DetonateOpts) bool
	Blast(spec BlastSpec)
}

// Env holds shared dependencies injected into all tile handlers.
type Env struct {
	World     *world.State
	Log       *zap.Logger
	Clock     *schedule.Scheduler
	Tasks     *schedule.Tasks[grid.Cell]    // cell-keyed handler tasks
	BombTasks *schedule.Tasks[ecs.EntityID] // bomb-keyed handler tasks
	Detonator Detonator
	Presenter fx.Presenter
	Scripts   *scripting.Engine // nil when no scripts are loaded
	Bus       *event.Bus
	Metrics   *metrics.Metrics
}

// Defaults fills in collaborators left nil so a partially wired Env still
// propagates: a no-op logger and presenter, and a private clock with its
// task managers. World is required.
func (e *Env) Defaults() {
	if e.Log == nil {
		e.Log = zap.NewNop()
	}
	if e.Presenter == nil {
		e.Presenter = fx.Nop{}
	}
	if e.Clock == nil {
		e.Clock = schedule.NewScheduler()
	}
	if e.Tasks == nil {
		e.Tasks = schedule.NewTasks[grid.Cell](e.Clock, e.Log)
	}
	if e.BombTasks == nil {
		e.BombTasks = schedule.NewTasks[ecs.EntityID](e.Clock, e.Log)
	}
}

// TileDestroyed counts and announces a tile removed by fire.
func TileDestroyed(env *Env, cell grid.Cell, layer world.Layer, tile world.TileID) {
	env.Metrics.TileDestroyed(layer.String())
	event.Emit(env.Bus, event.TileDestroyed{Cell: cell, Layer: layer, Tile: tile})
}

// Safe runs fn with panic recovery so one broken handler cannot take down
// the game loop. It reports whether fn completed.
func Safe(log *zap.Logger, capability string, tile world.TileID, fn func()) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("handler panic recovered",
				zap.String("capability", capability),
				zap.String("tile", string(tile)),
				zap.Any("panic", rec),
			)
			ok = false
		}
	}()
	fn()
	return true
}

// blockingActors are the actor kinds that keep tiles and blasts out of a cell.
const blockingActors = world.MaskBlocking &^ world.MaskBomb

// cellFree reports whether a tile or bomb may move into c: ground present,
// no tile on the blocking layers, no live bomb and no blocking actor.
func cellFree(w *world.State, c grid.Cell) bool {
	if !w.Tiles.Ground.Has(c) || w.Tiles.Blocked(c) {
		return false
	}
	return !w.IsCellOccupied(c, world.MaskBlocking)
}

func taskName(kind string, c grid.Cell) string {
	return fmt.Sprintf("%s@%s", kind, c)
}
