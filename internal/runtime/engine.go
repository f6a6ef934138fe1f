package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/aretw0/automaton/internal/logging"
	"github.com/aretw0/automaton/pkg/domain"
)

// Engine hosts simulations: it adds cancellation, a step ceiling, lifecycle hooks
// and logging around the pure simulation of domain.Automaton.
// An Engine holds no per-run state and is safe for concurrent use.
type Engine struct {
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxSteps int
	now      func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSteps limits the number of symbols a single run (or session) may consume.
// Zero disables the limit.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// NewEngine creates an engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxSteps returns the configured step ceiling (0 = unlimited).
func (e *Engine) MaxSteps() int { return e.maxSteps }

// Simulate runs input through a. Symbols outside the alphabet are not errors:
// they halt the run and are reported in Result.Rejected.
func (e *Engine) Simulate(ctx context.Context, a *domain.Automaton, input string) (*domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.maxSteps > 0 {
		if n := utf8.RuneCountInString(input); n > e.maxSteps {
			return nil, fmt.Errorf("%w: %d symbols, limit %d", ErrInputTooLong, n, e.maxSteps)
		}
	}

	start := e.now()
	e.emitRunStart(ctx, a.ID(), "", input)

	res := a.Simulate(input)

	if e.hooks.OnStep != nil {
		for _, step := range res.Trace {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e.emitStep(ctx, a.ID(), "", step)
		}
	}

	e.emitRunEnd(ctx, a.ID(), "", res, e.now().Sub(start))
	e.logResult(res)
	return res, nil
}

func (e *Engine) logResult(res *domain.Result) {
	attrs := []any{
		"automaton", res.AutomatonID,
		"verdict", res.Verdict(),
		"final_state", res.FinalState,
		"steps", len(res.Trace),
	}
	if res.Rejected != nil {
		attrs = append(attrs, "symbol", res.Rejected.Symbol, "index", res.Rejected.Index)
	}
	e.logger.Debug("simulation finished", attrs...)
}

func (e *Engine) emitRunStart(ctx context.Context, automatonID, sessionID, input string) {
	if e.hooks.OnRunStart == nil {
		return
	}
	e.hooks.OnRunStart(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{
			Timestamp:   e.now(),
			Type:        domain.EventRunStart,
			AutomatonID: automatonID,
			SessionID:   sessionID,
		},
		Input: input,
	})
}

func (e *Engine) emitStep(ctx context.Context, automatonID, sessionID string, step domain.Step) {
	if e.hooks.OnStep == nil {
		return
	}
	e.hooks.OnStep(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{
			Timestamp:   e.now(),
			Type:        domain.EventStep,
			AutomatonID: automatonID,
			SessionID:   sessionID,
		},
		Step: step,
	})
}

func (e *Engine) emitRunEnd(ctx context.Context, automatonID, sessionID string, res *domain.Result, d time.Duration) {
	if e.hooks.OnRunEnd == nil {
		return
	}
	e.hooks.OnRunEnd(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{
			Timestamp:   e.now(),
			Type:        domain.EventRunEnd,
			AutomatonID: automatonID,
			SessionID:   sessionID,
		},
		Input:    res.Input,
		Result:   res,
		Duration: d,
	})
}
