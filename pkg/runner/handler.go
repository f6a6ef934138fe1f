package runner

import (
	"context"

	"github.com/aretw0/automaton/pkg/domain"
)

// Update is what the runner reports after each chunk of input.
type Update struct {
	Session *domain.Session `json:"session"`
	// Steps holds only the transitions taken by the last chunk.
	Steps []domain.Step `json:"steps,omitempty"`
	// Result is set once, when the session is finished.
	Result *domain.Result `json:"result,omitempty"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the progress of the session.
	Output(ctx context.Context, update Update) error

	// Input reads the next chunk of symbols (or a command) from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (warnings, prompts).
	// This is distinct from session output.
	SystemOutput(ctx context.Context, msg string) error
}

// Stepper is the part of the engine the runner drives.
type Stepper interface {
	Feed(ctx context.Context, sessionID, symbols string) (*domain.Session, error)
	Finish(ctx context.Context, sessionID string) (*domain.Result, error)
}
