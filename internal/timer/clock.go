// Package timer drives the per-session time signals. Scheduling goes through
// a Clock so the timer runs the same against the wall clock and a virtual one.
package timer

import (
	"sync"
	"time"
)

// Handle cancels a periodic schedule. Stop is idempotent.
type Handle interface {
	Stop()
}

// Clock is the scheduling abstraction the Timer is built on.
type Clock interface {
	Now() time.Time
	// Every calls fn once per interval until the returned handle is stopped.
	Every(interval time.Duration, fn func(now time.Time)) Handle
}

// SystemClock schedules on the wall clock using a ticker goroutine per
// schedule. Once Stop returns, fn is not running and will not run again; fn
// must therefore not stop its own handle.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Every(interval time.Duration, fn func(time.Time)) Handle {
	h := &systemHandle{done: make(chan struct{})}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case now := <-ticker.C:
				h.mu.Lock()
				if !h.stopped {
					fn(now)
				}
				h.mu.Unlock()
			}
		}
	}()
	return h
}

type systemHandle struct {
	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

func (h *systemHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	close(h.done)
}
