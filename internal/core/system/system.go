package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput    Phase = iota // 0: stage timeline, external bomb placement
	PhaseFuse                  // 1: fuse countdown + detonation
	PhaseSchedule              // 2: advance simulated clock, run tasks
	PhaseWatch                 // 3: bomb-at notifications
	PhaseSegments              // 4: explosion segment expiry
	PhaseEvents                // 5: swap + dispatch event bus
	PhasePersist               // 6: journal flush
	PhaseCleanup               // 7: stage end
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseFuse:
		return "fuse"
	case PhaseSchedule:
		return "schedule"
	case PhaseWatch:
		return "watch"
	case PhaseSegments:
		return "segments"
	case PhaseEvents:
		return "events"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
