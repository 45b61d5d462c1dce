package mastery

// ModuleState represents a module's position in the unlock lifecycle.
type ModuleState string

const (
	StateLocked    ModuleState = "locked"
	StateAvailable ModuleState = "available"
	StateWeak      ModuleState = "weak"
	StateLearning  ModuleState = "learning"
	StateCompleted ModuleState = "completed"
)

// StateTransition records a module state change for display and logging.
type StateTransition struct {
	BookID   int
	ModuleID int
	From     ModuleState
	To       ModuleState
	Trigger  string // "test-result", "unlock"
}
