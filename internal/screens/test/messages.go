package test

import (
	"time"

	"github.com/cfaprep/cfaprep/internal/question"
)

// loadedMsg carries the fetched questions, or the fetch error.
type loadedMsg struct {
	Questions []question.Question
	Err       error
}

// tickMsg pumps the session clock once per timer interval. Ticks from an
// earlier loop carry a stale generation and are dropped.
type tickMsg struct {
	gen int
	at  time.Time
}
