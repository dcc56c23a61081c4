package system

import (
	"time"

	coresys "github.com/blastgrid/server/internal/core/system"
	"github.com/blastgrid/server/internal/explosion"
	"github.com/blastgrid/server/internal/metrics"
	"github.com/blastgrid/server/internal/world"
)

// BombWatchSystem tells ground handlers about bombs that came to rest on a
// new cell. Notifications are debounced per bomb by the propagator.
// Phase 3 (Watch).
type BombWatchSystem struct {
	world   *world.State
	prop    *explosion.Propagator
	metrics *metrics.Metrics
}

func NewBombWatchSystem(ws *world.State, prop *explosion.Propagator, m *metrics.Metrics) *BombWatchSystem {
	return &BombWatchSystem{world: ws, prop: prop, metrics: m}
}

func (s *BombWatchSystem) Phase() coresys.Phase { return coresys.PhaseWatch }

func (s *BombWatchSystem) Update(_ time.Duration) {
	for _, b := range s.world.Bombs.List() {
		s.prop.NotifyBombAt(b)
	}
	s.metrics.SetLiveBombs(s.world.Bombs.Len())
}
