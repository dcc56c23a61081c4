package schedule

import (
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"
)

// DefaultPoll is the re-check interval of Until waits that do not set one.
const DefaultPoll = 100 * time.Millisecond

// Wait is a suspension point yielded by a task routine.
type Wait struct {
	delay time.Duration
	until func() bool
	poll  time.Duration
}

// Sleep suspends the task for d of simulated time.
func Sleep(d time.Duration) Wait { return Wait{delay: d} }

// Until suspends the task until cond returns true, re-checking every poll.
// A condition that already holds does not suspend at all.
func Until(cond func() bool, poll time.Duration) Wait {
	if poll <= 0 {
		poll = DefaultPoll
	}
	return Wait{until: cond, poll: poll}
}

// Routine is the body of a task. It suspends only by yielding a Wait. When
// yield returns false the task has been cancelled and the routine must return
// without touching the world again.
type Routine func(t *Task, yield func(Wait) bool)

// Outcome reports how a task ended, or that it started.
type Outcome uint8

const (
	OutcomeStarted Outcome = iota
	OutcomeFinished
	OutcomeCancelled
	OutcomeAbandoned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStarted:
		return "started"
	case OutcomeFinished:
		return "finished"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Stats counts task outcomes since the manager was created.
type Stats struct {
	Started   int
	Finished  int
	Cancelled int
	Abandoned int
}

// Task is the handle a routine receives. Routines that call back into the
// simulation (which may cancel them re-entrantly) check Cancelled before
// mutating.
type Task struct {
	Name string

	next      func() (Wait, bool)
	stop      func()
	handle    *Handle
	running   bool
	cancelled bool
	ended     bool
	abandoned string
}

// Cancelled reports whether the task has been asked to stop.
func (t *Task) Cancelled() bool { return t.cancelled }

// Abandon records that the routine is giving up because its precondition no
// longer holds. The routine should return right after calling it.
func (t *Task) Abandon(reason string) {
	if t.abandoned == "" {
		t.abandoned = reason
	}
}

// Tasks runs at most one task per key. Starting a task for a key that has a
// pending one cancels the old task first, so two tasks never race on the
// same key.
type Tasks[K comparable] struct {
	clock *Scheduler
	log   *zap.Logger
	tasks map[K]*Task
	stats Stats

	// OnOutcome, when set, observes every start and end.
	OnOutcome func(name string, outcome Outcome, reason string)
}

func NewTasks[K comparable](clock *Scheduler, log *zap.Logger) *Tasks[K] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tasks[K]{
		clock: clock,
		log:   log,
		tasks: make(map[K]*Task),
	}
}

// Start cancels any task pending under key and starts r in its place. The
// routine runs synchronously up to its first Wait.
func (m *Tasks[K]) Start(key K, name string, r Routine) *Task {
	m.Cancel(key)

	t := &Task{Name: name}
	t.next, t.stop = iter.Pull(iter.Seq[Wait](func(yield func(Wait) bool) {
		r(t, yield)
	}))
	m.tasks[key] = t
	m.stats.Started++
	m.notify(t, OutcomeStarted)
	m.resume(key, t)
	return t
}

// Cancel stops the task pending under key. It reports whether one existed.
// A task that cancels itself (re-entrantly, while running) is stopped at its
// next yield.
func (m *Tasks[K]) Cancel(key K) bool {
	t, ok := m.tasks[key]
	if !ok {
		return false
	}
	delete(m.tasks, key)
	t.cancelled = true
	if t.running {
		return true
	}
	m.end(t, OutcomeCancelled)
	return true
}

// Pending reports whether a task is registered under key.
func (m *Tasks[K]) Pending(key K) bool {
	_, ok := m.tasks[key]
	return ok
}

// Get returns the task registered under key.
func (m *Tasks[K]) Get(key K) (*Task, bool) {
	t, ok := m.tasks[key]
	return t, ok
}

func (m *Tasks[K]) Len() int { return len(m.tasks) }

func (m *Tasks[K]) Stats() Stats { return m.stats }

// CancelAll stops every pending task (stage-end cleanup).
func (m *Tasks[K]) CancelAll() {
	for key := range m.tasks {
		m.Cancel(key)
	}
}

// resume drives t until its next real suspension.
func (m *Tasks[K]) resume(key K, t *Task) {
	defer func() {
		if rec := recover(); rec != nil {
			m.log.Error("task panic recovered",
				zap.String("task", t.Name),
				zap.Any("panic", rec),
			)
			t.running = false
			t.Abandon(fmt.Sprintf("panic: %v", rec))
			m.detach(key, t)
			m.end(t, OutcomeAbandoned)
		}
	}()

	for {
		if t.ended {
			return
		}
		t.running = true
		w, ok := t.next()
		t.running = false

		if !ok {
			m.detach(key, t)
			if t.abandoned != "" {
				m.end(t, OutcomeAbandoned)
			} else if t.cancelled {
				m.end(t, OutcomeCancelled)
			} else {
				m.end(t, OutcomeFinished)
			}
			return
		}
		if t.cancelled {
			m.end(t, OutcomeCancelled)
			return
		}
		if w.until != nil {
			if w.until() {
				continue
			}
			m.waitUntil(key, t, w)
			return
		}
		t.handle = m.clock.Schedule(w.delay, func() { m.resume(key, t) })
		return
	}
}

func (m *Tasks[K]) waitUntil(key K, t *Task, w Wait) {
	t.handle = m.clock.Schedule(w.poll, func() {
		if t.ended {
			return
		}
		if w.until() {
			m.resume(key, t)
			return
		}
		m.waitUntil(key, t, w)
	})
}

// detach removes t from the key map unless a newer task replaced it.
func (m *Tasks[K]) detach(key K, t *Task) {
	if cur, ok := m.tasks[key]; ok && cur == t {
		delete(m.tasks, key)
	}
}

func (m *Tasks[K]) end(t *Task, outcome Outcome) {
	if t.ended {
		return
	}
	t.ended = true
	t.handle.Cancel()
	t.stop()

	switch outcome {
	case OutcomeFinished:
		m.stats.Finished++
	case OutcomeCancelled:
		m.stats.Cancelled++
	case OutcomeAbandoned:
		m.stats.Abandoned++
		m.log.Debug("task abandoned", zap.String("task", t.Name), zap.String("reason", t.abandoned))
	}
	m.notify(t, outcome)
}

func (m *Tasks[K]) notify(t *Task, outcome Outcome) {
	if m.OnOutcome != nil {
		m.OnOutcome(t.Name, outcome, t.abandoned)
	}
}
