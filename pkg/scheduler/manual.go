package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by simulated time. Tests call Advance to
// move the clock and fire due tasks instead of waiting on wall-clock
// timers.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	sched     *Manual
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
	fired     bool
}

// NewManual creates a Manual scheduler with the clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

func (s *Manual) Schedule(d time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	task := &manualTask{
		sched: s,
		due:   s.now + d,
		seq:   s.seq,
		fn:    fn,
	}
	s.tasks = append(s.tasks, task)
	return task
}

// Advance moves the simulated clock forward and runs all tasks that come
// due, in deadline order. Tasks run without the scheduler lock held so
// they may schedule further work.
func (s *Manual) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	now := s.now

	var due []*manualTask
	for _, task := range s.tasks {
		if !task.cancelled && !task.fired && task.due <= now {
			task.fired = true
			due = append(due, task)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	s.mu.Unlock()

	for _, task := range due {
		task.fn()
	}
}

// Pending reports the number of tasks that have not fired or been
// cancelled yet.
func (s *Manual) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, task := range s.tasks {
		if !task.cancelled && !task.fired {
			n++
		}
	}
	return n
}

func (t *manualTask) Cancel() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()

	if t.fired || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}
