package scheduler

import (
	"sync"
	"time"
)

// Handle controls one scheduled task.
type Handle interface {
	// Cancel stops the task if it has not fired yet. It reports whether
	// the task was still pending.
	Cancel() bool
}

// Scheduler runs a function once after a delay. Implementations must
// guarantee that a cancelled task never fires.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Handle
}

type timerScheduler struct{}

// New returns a wall-clock Scheduler backed by time.AfterFunc.
func New() Scheduler {
	return &timerScheduler{}
}

func (s *timerScheduler) Schedule(d time.Duration, fn func()) Handle {
	h := &timerHandle{}
	h.timer = time.AfterFunc(d, func() {
		h.mu.Lock()
		if h.cancelled {
			h.mu.Unlock()
			return
		}
		h.fired = true
		h.mu.Unlock()
		fn()
	})
	return h
}

type timerHandle struct {
	mu        sync.Mutex
	timer     *time.Timer
	fired     bool
	cancelled bool
}

func (h *timerHandle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fired || h.cancelled {
		return false
	}
	h.cancelled = true
	h.timer.Stop()
	return true
}
