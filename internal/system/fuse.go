package system

import (
	"time"

	"github.com/blastgrid/server/internal/core/event"
	coresys "github.com/blastgrid/server/internal/core/system"
	"github.com/blastgrid/server/internal/handler"
	"github.com/blastgrid/server/internal/world"
)

// FuseSystem counts bomb fuses down and detonates the ones that run out.
// Phase 1 (Fuse).
//
// Every live bomb's fuse is decremented first, moving bombs included. Then
// expired bombs go off in scan order (row, column, ID). A moving bomb with an
// expired fuse waits until it is idle again. A bomb already taken by an
// earlier chain in the same tick is skipped by Detonate itself.
type FuseSystem struct {
	world *world.State
	det   handler.Detonator
}

func NewFuseSystem(ws *world.State, det handler.Detonator) *FuseSystem {
	return &FuseSystem{world: ws, det: det}
}

func (s *FuseSystem) Phase() coresys.Phase { return coresys.PhaseFuse }

func (s *FuseSystem) Update(dt time.Duration) {
	bombs := s.world.Bombs.List()
	for _, b := range bombs {
		b.Fuse -= dt
		if b.Fuse < 0 {
			b.Fuse = 0
		}
	}
	for _, b := range bombs {
		if b.Fuse > 0 || !b.Idle() {
			continue
		}
		s.det.Detonate(b, handler.DetonateOpts{Cause: event.CauseFuse})
	}
}
