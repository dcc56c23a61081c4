package system

import (
	"time"

	coresys "github.com/blastgrid/server/internal/core/system"
	"github.com/blastgrid/server/internal/handler"
	"github.com/blastgrid/server/internal/world"
	"go.uber.org/zap"
)

// CleanupSystem detects the end of a stage: the timeline has fired, and no
// bombs, segments or tasks are left. Phase 7 (Cleanup).
type CleanupSystem struct {
	world  *world.State
	stage  *StageScriptSystem
	env    *handler.Env
	log    *zap.Logger
	onDone func()

	done bool
}

// NewCleanupSystem calls onDone once when the stage settles.
func NewCleanupSystem(ws *world.State, stage *StageScriptSystem, env *handler.Env, log *zap.Logger, onDone func()) *CleanupSystem {
	return &CleanupSystem{world: ws, stage: stage, env: env, log: log, onDone: onDone}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if s.done || !s.settled() {
		return
	}
	s.done = true
	s.log.Info("stage settled",
		zap.Duration("sim_time", s.env.Clock.Now()),
		zap.Int("destructibles_left", s.world.Tiles.Destructible.Len()),
		zap.Int("actors", len(s.world.Actors())),
	)
	if s.onDone != nil {
		s.onDone()
	}
}

// Done reports whether the stage has settled.
func (s *CleanupSystem) Done() bool { return s.done }

func (s *CleanupSystem) settled() bool {
	if s.stage != nil && !s.stage.Done() {
		return false
	}
	if s.world.Bombs.Len() > 0 || s.world.Segments.Len() > 0 {
		return false
	}
	if s.env.Tasks != nil && s.env.Tasks.Len() > 0 {
		return false
	}
	if s.env.BombTasks != nil && s.env.BombTasks.Len() > 0 {
		return false
	}
	return true
}

// EndStage drops everything still live: pending tasks, bombs and segments.
func EndStage(env *handler.Env) {
	if env.Tasks != nil {
		env.Tasks.CancelAll()
	}
	if env.BombTasks != nil {
		env.BombTasks.CancelAll()
	}
	env.World.Bombs.Clear()
	env.World.Segments.Clear()
}
