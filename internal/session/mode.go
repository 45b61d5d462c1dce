package session

import (
	"fmt"
	"strings"

	"github.com/cfaprep/cfaprep/internal/timer"
)

// Mode is the timing and feedback regime of a session.
type Mode int

const (
	// Standard: free navigation, count-up timer, feedback only after submit.
	Standard Mode = iota
	// Learning: self-paced, no timer, per-question check step.
	Learning
	// NinetySecond: forward-only, 90s count-down per question, feedback on
	// selection.
	NinetySecond
)

// Modes lists every mode in menu order.
var Modes = []Mode{Standard, Learning, NinetySecond}

func (m Mode) String() string {
	switch m {
	case Learning:
		return "learning"
	case NinetySecond:
		return "ninetySecond"
	default:
		return "standard"
	}
}

// WireName is the mode's name in submissions to the progress service.
func (m Mode) WireName() string {
	if m == NinetySecond {
		return "90_second"
	}
	return m.String()
}

// Label is the human-readable name.
func (m Mode) Label() string {
	switch m {
	case Learning:
		return "Learning"
	case NinetySecond:
		return "90 seconds per question"
	default:
		return "Standard"
	}
}

// Policy returns the timer policy for the mode; ok is false for modes that
// run without a timer.
func (m Mode) Policy() (policy timer.Policy, ok bool) {
	switch m {
	case Standard:
		return timer.CountUp, true
	case NinetySecond:
		return timer.CountDown, true
	default:
		return 0, false
	}
}

// ParseMode accepts a mode's String or WireName, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "":
		return Standard, nil
	case "learning":
		return Learning, nil
	case "ninetysecond", "90_second", "90":
		return NinetySecond, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// Phase is the lifecycle state of a Session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseActive
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseActive:
		return "active"
	case PhaseCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// QuestionState is the per-question sub-state while a session is active.
type QuestionState int

const (
	Unanswered QuestionState = iota
	Answered
	// Checked is only reachable in Learning mode.
	Checked
)

func (q QuestionState) String() string {
	switch q {
	case Answered:
		return "answered"
	case Checked:
		return "checked"
	default:
		return "unanswered"
	}
}
