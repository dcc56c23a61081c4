package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type probe struct {
	phase Phase
	name  string
	log   *[]string
	boom  bool
}

func (p *probe) Phase() Phase { return p.phase }

func (p *probe) Update(time.Duration) {
	*p.log = append(*p.log, p.name)
	if p.boom {
		panic("broken system")
	}
}

func TestRunner_PhaseOrderStable(t *testing.T) {
	var log []string
	r := NewRunner(nil)
	r.Register(&probe{phase: PhaseCleanup, name: "cleanup", log: &log})
	r.Register(&probe{phase: PhaseFuse, name: "fuse-a", log: &log})
	r.Register(&probe{phase: PhaseInput, name: "input", log: &log})
	r.Register(&probe{phase: PhaseFuse, name: "fuse-b", log: &log})

	r.Tick(time.Millisecond)

	assert.Equal(t, []string{"input", "fuse-a", "fuse-b", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())
}

func TestRunner_PanicIsolated(t *testing.T) {
	var log []string
	r := NewRunner(nil)
	r.Register(&probe{phase: PhaseFuse, name: "bad", log: &log, boom: true})
	r.Register(&probe{phase: PhaseEvents, name: "good", log: &log})

	assert.NotPanics(t, func() { r.Tick(time.Millisecond) })
	assert.Equal(t, []string{"bad", "good"}, log)
}

func TestRunner_TickPhase(t *testing.T) {
	var log []string
	r := NewRunner(nil)
	r.Register(&probe{phase: PhaseInput, name: "input", log: &log})
	r.Register(&probe{phase: PhaseFuse, name: "fuse", log: &log})

	r.TickPhase(PhaseFuse, time.Millisecond)
	assert.Equal(t, []string{"fuse"}, log)
	assert.Equal(t, uint64(0), r.Ticks())
}
