package system

import (
	"time"

	coresys "github.com/blastgrid/server/internal/core/system"
	"github.com/blastgrid/server/internal/world"
	"go.uber.org/zap"
)

// SegmentSystem ages explosion segments and drops the expired ones.
// Phase 4 (Segments).
type SegmentSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewSegmentSystem(ws *world.State, log *zap.Logger) *SegmentSystem {
	return &SegmentSystem{world: ws, log: log}
}

func (s *SegmentSystem) Phase() coresys.Phase { return coresys.PhaseSegments }

func (s *SegmentSystem) Update(dt time.Duration) {
	if expired := s.world.Segments.Tick(dt); len(expired) > 0 {
		s.log.Debug("segments expired", zap.Int("count", len(expired)), zap.Int("live", s.world.Segments.Len()))
	}
}
