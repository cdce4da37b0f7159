package game

import (
	"sync"
	"time"
)

// Scheduler runs keyed, cancellable delayed tasks. Each session keys its finish
// step by session id so leaving or resetting the session can cancel it.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]*scheduled
	wg      sync.WaitGroup
	stopped bool
	seq     uint64
}

type scheduled struct {
	timer *time.Timer
	seq   uint64
}

func NewScheduler() *Scheduler {
	return &Scheduler{pending: map[string]*scheduled{}}
}

// After schedules fn to run once after d, replacing any pending task for key.
// d <= 0 runs fn synchronously. After a Stop the call is a no-op and returns false.
func (s *Scheduler) After(key string, d time.Duration, fn func()) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	s.cancelLocked(key)
	if d <= 0 {
		s.mu.Unlock()
		fn()
		return true
	}
	s.seq++
	seq := s.seq
	s.wg.Add(1)
	entry := &scheduled{seq: seq}
	entry.timer = time.AfterFunc(d, func() {
		defer s.wg.Done()
		s.mu.Lock()
		cur, ok := s.pending[key]
		if !ok || cur.seq != seq {
			s.mu.Unlock()
			return
		}
		delete(s.pending, key)
		s.mu.Unlock()
		fn()
	})
	s.pending[key] = entry
	s.mu.Unlock()
	return true
}

// Cancel drops the pending task for key. It reports whether one was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(key)
}

func (s *Scheduler) cancelLocked(key string) bool {
	entry, ok := s.pending[key]
	if !ok {
		return false
	}
	delete(s.pending, key)
	if entry.timer.Stop() {
		// the callback will never run, so release its slot here
		s.wg.Done()
	}
	return true
}

// Pending reports whether key has a task waiting.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Stop cancels every pending task and waits for callbacks already running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for key := range s.pending {
		s.cancelLocked(key)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
