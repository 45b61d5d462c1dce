package session

import "errors"

var (
	// ErrEmptyQuestionSet is returned by Start when there is nothing to ask.
	ErrEmptyQuestionSet = errors.New("no questions available for this test")
	// ErrNotActive is returned by operations that need an active session,
	// including a second Submit.
	ErrNotActive = errors.New("session is not active")
	// ErrNoAnswerSelected is returned by CheckAnswer before any selection.
	// It is a user warning: the session is unchanged.
	ErrNoAnswerSelected = errors.New("select an answer first")
	// ErrUnknownOption is returned when the option id is not on the question.
	ErrUnknownOption = errors.New("unknown option")
	// ErrAnswerLocked is returned when changing an answer whose result has
	// already been disclosed.
	ErrAnswerLocked = errors.New("answer already revealed")
	// ErrCheckNotAllowed is returned by CheckAnswer outside Learning mode.
	ErrCheckNotAllowed = errors.New("check is only available in learning mode")
)
