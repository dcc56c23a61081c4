package schedule

import (
	"container/heap"
	"time"
)

// Scheduler runs delayed continuations against a simulated clock that only
// moves when Advance is called. Everything runs on the caller's goroutine.
type Scheduler struct {
	now     time.Duration
	seq     uint64
	queue   entryHeap
	running bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Handle cancels a scheduled continuation.
type Handle struct {
	e *entry
}

// Cancel stops the continuation from running again. Safe to call more than
// once and from inside the continuation itself.
func (h *Handle) Cancel() {
	if h == nil || h.e == nil {
		return
	}
	h.e.cancelled = true
}

// Active reports whether the continuation is still due to run.
func (h *Handle) Active() bool {
	return h != nil && h.e != nil && !h.e.cancelled && !h.e.done
}

type entry struct {
	due       time.Duration
	seq       uint64
	interval  time.Duration // > 0 for repeating entries
	fn        func()
	cancelled bool
	done      bool
	index     int
}

// Now returns the simulated time.
func (s *Scheduler) Now() time.Duration { return s.now }

// Schedule runs fn once after delay. A non-positive delay runs fn on the
// next Advance.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) *Handle {
	if delay < 0 {
		delay = 0
	}
	return s.push(&entry{due: s.now + delay, fn: fn})
}

// ScheduleRepeating runs fn every interval until cancelled. Intervals below
// one millisecond are raised to one millisecond.
func (s *Scheduler) ScheduleRepeating(interval time.Duration, fn func()) *Handle {
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return s.push(&entry{due: s.now + interval, interval: interval, fn: fn})
}

func (s *Scheduler) push(e *entry) *Handle {
	s.seq++
	e.seq = s.seq
	heap.Push(&s.queue, e)
	return &Handle{e: e}
}

// Advance moves the clock forward by dt and runs every continuation that
// falls due, in due order, FIFO among equal due times. Continuations that
// schedule new work inside the window see it run in the same call.
func (s *Scheduler) Advance(dt time.Duration) {
	if s.running {
		return // re-entrant advance from a continuation is ignored
	}
	s.running = true
	defer func() { s.running = false }()

	end := s.now + dt
	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.due > end {
			break
		}
		heap.Pop(&s.queue)
		if next.cancelled {
			continue
		}
		if next.due > s.now {
			s.now = next.due
		}
		if next.interval > 0 {
			next.due += next.interval
			s.seq++
			next.seq = s.seq
			heap.Push(&s.queue, next)
		} else {
			next.done = true
		}
		next.fn()
	}
	s.now = end
}

// Len returns the number of live (not cancelled) entries.
func (s *Scheduler) Len() int {
	n := 0
	for _, e := range s.queue {
		if !e.cancelled {
			n++
		}
	}
	return n
}

// Reset cancels everything and rewinds the clock to zero.
func (s *Scheduler) Reset() {
	for _, e := range s.queue {
		e.cancelled = true
	}
	s.queue = s.queue[:0]
	s.now = 0
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
