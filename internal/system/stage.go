package system

import (
	"time"

	"github.com/blastgrid/server/internal/core/ecs"
	coresys "github.com/blastgrid/server/internal/core/system"
	"github.com/blastgrid/server/internal/data"
	"github.com/blastgrid/server/internal/explosion"
	"github.com/blastgrid/server/internal/world"
	"go.uber.org/zap"
)

// StageScriptSystem plays the stage timeline: each entry fires once the
// stage clock reaches its offset. Phase 0 (Input).
type StageScriptSystem struct {
	prop     *explosion.Propagator
	timeline []data.TimelineEntry
	owners   map[string]ecs.EntityID
	log      *zap.Logger

	elapsed time.Duration
	next    int
}

// NewStageScriptSystem takes the actor IDs returned by Stage.Apply to
// resolve bomb owners by name.
func NewStageScriptSystem(prop *explosion.Propagator, timeline []data.TimelineEntry, owners map[string]ecs.EntityID, log *zap.Logger) *StageScriptSystem {
	return &StageScriptSystem{
		prop:     prop,
		timeline: timeline,
		owners:   owners,
		log:      log,
	}
}

func (s *StageScriptSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *StageScriptSystem) Update(dt time.Duration) {
	for s.next < len(s.timeline) && s.timeline[s.next].At <= s.elapsed {
		s.fire(s.timeline[s.next])
		s.next++
	}
	s.elapsed += dt
}

// Done reports whether every timeline entry has fired.
func (s *StageScriptSystem) Done() bool { return s.next >= len(s.timeline) }

func (s *StageScriptSystem) fire(e data.TimelineEntry) {
	if e.Bomb == nil {
		return
	}
	be := e.Bomb
	spec := world.BombSpec{
		Pos:    s.prop.Env().World.Conv.Center(be.Cell()),
		Radius: be.Radius,
		Fuse:   be.Fuse,
	}
	if be.Pierce != nil {
		spec.Pierce = *be.Pierce
	}
	if be.Owner != "" {
		id, ok := s.owners[be.Owner]
		if !ok {
			s.log.Warn("timeline bomb owner not found", zap.String("owner", be.Owner))
		}
		spec.Owner = id
	}
	s.prop.PlaceBomb(spec)
}
