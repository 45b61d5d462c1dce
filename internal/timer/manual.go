package timer

import (
	"sync"
	"time"
)

// ManualClock is a virtual clock: time only moves when Advance or AdvanceTo
// is called, and due callbacks fire synchronously on the calling goroutine in
// schedule order. The terminal UI pumps one from its tick loop; tests use it
// directly.
type ManualClock struct {
	mu        sync.Mutex
	now       time.Time
	schedules []*manualSchedule
}

type manualSchedule struct {
	clock    *ManualClock
	interval time.Duration
	next     time.Time
	fn       func(time.Time)
	stopped  bool
}

// NewManualClock returns a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Every(interval time.Duration, fn func(time.Time)) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := &manualSchedule{clock: c, interval: interval, next: c.now.Add(interval), fn: fn}
	c.schedules = append(c.schedules, s)
	return s
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.AdvanceTo(c.Now().Add(d))
}

// AdvanceTo moves the clock to t, firing every schedule that falls due on
// the way. Moving backwards is a no-op.
func (c *ManualClock) AdvanceTo(t time.Time) {
	for {
		c.mu.Lock()
		s := c.nextDue(t)
		if s == nil {
			if t.After(c.now) {
				c.now = t
			}
			c.mu.Unlock()
			return
		}
		now := s.next
		c.now = now
		s.next = s.next.Add(s.interval)
		c.mu.Unlock()

		s.fn(now)
	}
}

// Active returns the number of schedules that have not been stopped.
func (c *ManualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.schedules)
}

func (c *ManualClock) nextDue(t time.Time) *manualSchedule {
	var due *manualSchedule
	for _, s := range c.schedules {
		if s.next.After(t) {
			continue
		}
		if due == nil || s.next.Before(due.next) {
			due = s
		}
	}
	return due
}

func (s *manualSchedule) Stop() {
	c := s.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	for i, other := range c.schedules {
		if other == s {
			c.schedules = append(c.schedules[:i], c.schedules[i+1:]...)
			break
		}
	}
}
