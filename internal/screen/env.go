package screen

import (
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/session"
	"github.com/cfaprep/cfaprep/internal/shuffle"
)

// Env is what every screen needs from the outside world.
type Env struct {
	Service progress.Service
	// Reporter receives completed sessions; nil drops them.
	Reporter session.Reporter
	Logger   *slog.Logger
	Shuffler *shuffle.Shuffler
	// Now is the wall clock the session timer is pumped from.
	Now func() time.Time
}

// WithDefaults fills unset fields.
func (e Env) WithDefaults() Env {
	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}
	if e.Shuffler == nil {
		e.Shuffler = shuffle.New()
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

// Resumer is implemented by screens that refresh when they become the top
// of the stack again.
type Resumer interface {
	Resume() tea.Cmd
}

// StatusMsg updates the text on the right of the header.
type StatusMsg struct {
	Text string
}
