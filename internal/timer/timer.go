package timer

import (
	"fmt"
	"sync"
	"time"
)

// Policy selects how a Timer turns elapsed time into a signal.
type Policy int

const (
	// CountUp reports seconds elapsed since the session started.
	CountUp Policy = iota
	// CountDown reports seconds left of the per-question budget and keeps
	// counting past zero as overflow.
	CountDown
)

func (p Policy) String() string {
	if p == CountDown {
		return "count-down"
	}
	return "count-up"
}

const (
	// TickInterval is the period between signals.
	TickInterval = time.Second
	// QuestionBudget is the count-down allowance per question.
	QuestionBudget = 90 * time.Second
	// WarningThreshold is the remaining time at or below which a count-down
	// signal is flagged as a warning.
	WarningThreshold = 30 * time.Second
)

// Signal is one timer emission.
type Signal struct {
	Policy Policy
	// Seconds is elapsed time for CountUp and the magnitude of the remaining
	// (or overflowed) time for CountDown.
	Seconds  int
	Overflow bool
	Warning  bool
}

// Remaining returns the signed seconds left for a CountDown signal.
func (s Signal) Remaining() int {
	if s.Overflow {
		return -s.Seconds
	}
	return s.Seconds
}

func (s Signal) String() string {
	if s.Overflow {
		return "-" + Format(s.Seconds)
	}
	return Format(s.Seconds)
}

// Format renders seconds as mm:ss.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = -seconds
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Compute derives the signal for policy at now, given the reference instant
// (session start for CountUp, current question start for CountDown).
func Compute(policy Policy, reference, now time.Time) Signal {
	elapsed := int(now.Sub(reference) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	if policy == CountUp {
		return Signal{Policy: CountUp, Seconds: elapsed}
	}
	remaining := int(QuestionBudget/time.Second) - elapsed
	if remaining < 0 {
		return Signal{Policy: CountDown, Seconds: -remaining, Overflow: true}
	}
	return Signal{
		Policy:  CountDown,
		Seconds: remaining,
		Warning: remaining <= int(WarningThreshold/time.Second),
	}
}

// Timer emits a Signal every TickInterval while running. At most one
// schedule is live per Timer; Start always stops the previous one first, and
// no signal is delivered after Stop returns.
type Timer struct {
	clock  Clock
	onTick func(Signal)

	mu        sync.Mutex
	running   bool
	gen       uint64
	policy    Policy
	reference time.Time
	handle    Handle
}

// New returns a stopped Timer. onTick may be nil.
func New(clock Clock, onTick func(Signal)) *Timer {
	if onTick == nil {
		onTick = func(Signal) {}
	}
	return &Timer{clock: clock, onTick: onTick}
}

// Start begins emitting under policy measured from reference.
func (t *Timer) Start(policy Policy, reference time.Time) {
	t.Stop()

	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.running = true
	t.policy = policy
	t.reference = reference
	t.mu.Unlock()

	h := t.clock.Every(TickInterval, func(now time.Time) { t.tick(gen, now) })

	t.mu.Lock()
	if t.gen != gen {
		// Stopped or restarted while scheduling.
		t.mu.Unlock()
		h.Stop()
		return
	}
	t.handle = h
	t.mu.Unlock()
}

// Stop cancels the schedule. Safe to call repeatedly and on a stopped Timer.
func (t *Timer) Stop() {
	t.mu.Lock()
	h := t.handle
	t.handle = nil
	t.running = false
	t.gen++
	t.mu.Unlock()

	if h != nil {
		h.Stop()
	}
}

// Reset re-takes the reference instant. Only the CountDown policy resets;
// CountUp always measures from session start.
func (t *Timer) Reset(reference time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running && t.policy == CountDown {
		t.reference = reference
	}
}

// Running reports whether a schedule is live.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Current computes the signal at the clock's present time.
func (t *Timer) Current() (Signal, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return Signal{}, false
	}
	return Compute(t.policy, t.reference, t.clock.Now()), true
}

func (t *Timer) tick(gen uint64, now time.Time) {
	t.mu.Lock()
	if !t.running || gen != t.gen {
		t.mu.Unlock()
		return
	}
	sig := Compute(t.policy, t.reference, now)
	t.mu.Unlock()

	t.onTick(sig)
}
