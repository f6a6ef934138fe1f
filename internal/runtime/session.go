package runtime

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/aretw0/automaton/pkg/domain"
)

// Start opens an incremental session on a.
func (e *Engine) Start(ctx context.Context, a *domain.Automaton, sessionID string) *domain.Session {
	s := domain.NewSession(sessionID, a)
	s.UpdatedAt = e.now()
	e.emitRunStart(ctx, a.ID(), sessionID, "")
	e.logger.Debug("session started", "automaton", a.ID(), "session", sessionID, "state", s.CurrentState)
	return s
}

// Feed advances the session by symbols and returns the updated copy.
// The step ceiling applies to the total number of symbols a session consumes.
func (e *Engine) Feed(ctx context.Context, a *domain.Automaton, s *domain.Session, symbols string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.AutomatonID != a.ID() {
		return nil, fmt.Errorf("%w: session %s is bound to %q, not %q", ErrAutomatonMismatch, s.ID, s.AutomatonID, a.ID())
	}
	if !a.HasState(s.CurrentState) {
		return nil, fmt.Errorf("%w: session %s is at %q, which %s does not declare", ErrSessionCorrupt, s.ID, s.CurrentState, a.ID())
	}
	if s.Halted() {
		return nil, fmt.Errorf("%w: %s", ErrSessionHalted, s.ID)
	}
	if e.maxSteps > 0 {
		total := utf8.RuneCountInString(s.Consumed) + utf8.RuneCountInString(symbols)
		if total > e.maxSteps {
			return nil, fmt.Errorf("%w: session %s would consume %d symbols, limit %d", ErrInputTooLong, s.ID, total, e.maxSteps)
		}
	}

	next := a.Advance(s, symbols)
	next.UpdatedAt = e.now()

	for _, step := range next.Trace[len(s.Trace):] {
		e.emitStep(ctx, a.ID(), s.ID, step)
	}

	if next.Halted() {
		e.emitRunEnd(ctx, a.ID(), s.ID, a.Result(next), 0)
		e.logger.Debug("session halted", "session", s.ID, "symbol", next.Rejected.Symbol, "index", next.Rejected.Index)
	}
	return next, nil
}

// Finish closes the session and reports the Result equivalent to a one-shot run.
func (e *Engine) Finish(ctx context.Context, a *domain.Automaton, s *domain.Session) *domain.Result {
	res := a.Result(s)
	if !s.Halted() {
		e.emitRunEnd(ctx, a.ID(), s.ID, res, 0)
	}
	return res
}
