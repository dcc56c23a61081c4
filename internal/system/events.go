package system

import (
	"time"

	"github.com/blastgrid/server/internal/core/event"
	coresys "github.com/blastgrid/server/internal/core/system"
)

// EventSystem publishes the events emitted during this tick. Handlers see
// them in emission order; anything they emit lands in the next tick.
// Phase 5 (Events).
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
