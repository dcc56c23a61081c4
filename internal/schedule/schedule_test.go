package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_DueOrderAndFIFO(t *testing.T) {
	s := NewScheduler()
	var got []string
	s.Schedule(200*time.Millisecond, func() { got = append(got, "c") })
	s.Schedule(100*time.Millisecond, func() { got = append(got, "a") })
	s.Schedule(100*time.Millisecond, func() { got = append(got, "b") })

	s.Advance(150 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 150*time.Millisecond, s.Now())

	s.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_NowInsideContinuation(t *testing.T) {
	s := NewScheduler()
	var at time.Duration
	s.Schedule(30*time.Millisecond, func() { at = s.Now() })
	s.Advance(time.Second)
	assert.Equal(t, 30*time.Millisecond, at)
	assert.Equal(t, time.Second, s.Now())
}

func TestScheduler_NestedScheduleRunsInSameAdvance(t *testing.T) {
	s := NewScheduler()
	n := 0
	s.Schedule(10*time.Millisecond, func() {
		n++
		s.Schedule(10*time.Millisecond, func() { n++ })
	})
	s.Advance(25 * time.Millisecond)
	assert.Equal(t, 2, n)
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	ran := false
	h := s.Schedule(time.Millisecond, func() { ran = true })
	assert.True(t, h.Active())
	h.Cancel()
	h.Cancel()
	assert.False(t, h.Active())
	s.Advance(time.Second)
	assert.False(t, ran)

	var nilHandle *Handle
	nilHandle.Cancel()
	assert.False(t, nilHandle.Active())
}

func TestScheduler_Repeating(t *testing.T) {
	s := NewScheduler()
	n := 0
	var h *Handle
	h = s.ScheduleRepeating(100*time.Millisecond, func() {
		n++
		if n == 3 {
			h.Cancel()
		}
	})
	s.Advance(250 * time.Millisecond)
	assert.Equal(t, 2, n)
	s.Advance(time.Second)
	assert.Equal(t, 3, n, "cancel from inside the continuation stops it")
	assert.False(t, h.Active())
}

func TestScheduler_Reset(t *testing.T) {
	s := NewScheduler()
	ran := false
	h := s.Schedule(time.Millisecond, func() { ran = true })
	s.Advance(500 * time.Microsecond)
	s.Reset()

	assert.Equal(t, time.Duration(0), s.Now())
	assert.False(t, h.Active())
	assert.Equal(t, 0, s.Len())
	s.Advance(time.Second)
	assert.False(t, ran)
}

func TestTasks_RunsToFirstWaitSynchronously(t *testing.T) {
	s := NewScheduler()
	m := NewTasks[string](s, nil)
	var steps []string

	m.Start("k", "two-step", func(_ *Task, yield func(Wait) bool) {
		steps = append(steps, "begin")
		if !yield(Sleep(100 * time.Millisecond)) {
			return
		}
		steps = append(steps, "end")
	})

	assert.Equal(t, []string{"begin"}, steps)
	assert.True(t, m.Pending("k"))

	s.Advance(99 * time.Millisecond)
	assert.Equal(t, []string{"begin"}, steps)
	s.Advance(time.Millisecond)
	assert.Equal(t, []string{"begin", "end"}, steps)
	assert.False(t, m.Pending("k"))
	assert.Equal(t, Stats{Started: 1, Finished: 1}, m.Stats())
}

func TestTasks_StartReplacesPendingKey(t *testing.T) {
	s := NewScheduler()
	m := NewTasks[int](s, nil)
	var mutated []string
	cleanedUp := false

	m.Start(1, "first", func(_ *Task, yield func(Wait) bool) {
		defer func() { cleanedUp = true }()
		if !yield(Sleep(time.Second)) {
			return
		}
		mutated = append(mutated, "first")
	})
	m.Start(1, "second", func(_ *Task, yield func(Wait) bool) {
		if !yield(Sleep(time.Second)) {
			return
		}
		mutated = append(mutated, "second")
	})

	assert.True(t, cleanedUp, "cancelled routine unwinds")
	s.Advance(2 * time.Second)
	assert.Equal(t, []string{"second"}, mutated)
	assert.Equal(t, Stats{Started: 2, Finished: 1, Cancelled: 1}, m.Stats())
}

func TestTasks_CancelBeforeMutation(t *testing.T) {
	s := NewScheduler()
	m := NewTasks[string](s, nil)
	mutated := false
	m.Start("k", "t", func(_ *Task, yield func(Wait) bool) {
		if !yield(Sleep(time.Second)) {
			return
		}
		mutated = true
	})

	assert.True(t, m.Cancel("k"))
	assert.False(t, m.Cancel("k"))
	s.Advance(time.Minute)
	assert.False(t, mutated)
	assert.Equal(t, 0, m.Len())
}

func TestTasks_UntilPolls(t *testing.T) {
	s := NewScheduler()
	m := NewTasks[string](s, nil)
	blocked := true
	var doneAt time.Duration

	m.Start("k", "poll", func(_ *Task, yield func(Wait) bool) {
		if !yield(Until(func() bool { return !blocked }, 0)) {
			return
		}
		doneAt = s.Now()
	})

	s.Advance(250 * time.Millisecond)
	assert.Zero(t, doneAt)
	blocked = false
	s.Advance(100 * time.Millisecond)
	assert.Equal(t, 300*time.Millisecond, doneAt, "picked up on the next poll")
}

func TestTasks_UntilAlreadyTrueDoesNotSuspend(t *testing.T) {
	s := NewScheduler()
	m := NewTasks[string](s, nil)
	done := false
	m.Start("k", "t", func(_ *Task, yield func(Wait) bool) {
		if !yield(Until(func() bool { return true }, time.Second)) {
			return
		}
		done = true
	})
	assert.True(t, done)
	assert.False(t, m.Pending("k"))
}

func TestTasks_SelfCancelStopsAtNextYield(t *testing.T) {
	s := NewScheduler()
	m := NewTasks[string](s, nil)
	var sawCancel bool
	after := false

	m.Start("k", "self", func(task *Task, yield func(Wait) bool) {
		m.Cancel("k")
		sawCancel = task.Cancelled()
		if !yield(Sleep(time.Millisecond)) {
			return
		}
		after = true
	})
	s.Advance(time.Second)

	assert.True(t, sawCancel)
	assert.False(t, after)
	assert.Equal(t, 1, m.Stats().Cancelled)
}

func TestTasks_AbandonAndOutcomes(t *testing.T) {
	s := NewScheduler()
	m := NewTasks[string](s, nil)
	var outcomes []Outcome
	var reason string
	m.OnOutcome = func(_ string, o Outcome, r string) {
		outcomes = append(outcomes, o)
		if o == OutcomeAbandoned {
			reason = r
		}
	}

	m.Start("k", "gone", func(task *Task, yield func(Wait) bool) {
		if !yield(Sleep(time.Millisecond)) {
			return
		}
		task.Abandon("tile replaced")
	})
	s.Advance(time.Second)

	assert.Equal(t, []Outcome{OutcomeStarted, OutcomeAbandoned}, outcomes)
	assert.Equal(t, "tile replaced", reason)
	assert.Equal(t, Stats{Started: 1, Abandoned: 1}, m.Stats())
}

func TestTasks_PanicIsRecovered(t *testing.T) {
	s := NewScheduler()
	m := NewTasks[string](s, nil)
	m.Start("k", "boom", func(_ *Task, yield func(Wait) bool) {
		if !yield(Sleep(time.Millisecond)) {
			return
		}
		panic("kaboom")
	})
	require.NotPanics(t, func() { s.Advance(time.Second) })
	assert.False(t, m.Pending("k"))
	assert.Equal(t, 1, m.Stats().Abandoned)
}

func TestTasks_CancelAll(t *testing.T) {
	s := NewScheduler()
	m := NewTasks[int](s, nil)
	for i := range 3 {
		m.Start(i, "t", func(_ *Task, yield func(Wait) bool) {
			yield(Sleep(time.Second))
		})
	}
	require.Equal(t, 3, m.Len())
	m.CancelAll()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 3, m.Stats().Cancelled)
}
