package system

import (
	"time"

	coresys "github.com/blastgrid/server/internal/core/system"
	"github.com/blastgrid/server/internal/schedule"
)

// SchedulerSystem advances the simulated clock, which resumes scheduled
// tasks that fall due. Phase 2 (Schedule).
type SchedulerSystem struct {
	clock *schedule.Scheduler
}

func NewSchedulerSystem(clock *schedule.Scheduler) *SchedulerSystem {
	return &SchedulerSystem{clock: clock}
}

func (s *SchedulerSystem) Phase() coresys.Phase { return coresys.PhaseSchedule }

func (s *SchedulerSystem) Update(dt time.Duration) {
	s.clock.Advance(dt)
}
