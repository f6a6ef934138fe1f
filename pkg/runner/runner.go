package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/automaton/internal/logging"
	"github.com/aretw0/automaton/pkg/domain"
)

// Commands understood by the runner. Any other line is fed as symbols.
const (
	CommandDone  = ":done"
	CommandState = ":state"
	CommandExit  = "exit"
	CommandQuit  = "quit"
)

// ErrInterrupted is returned when a signal stops the loop before the session is finished.
var ErrInterrupted = errors.New("interrupted")

// Runner handles the stepping loop of a session using the provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Interceptor is applied to every chunk before it is fed.
	// Defaults to SanitizeMiddleware.
	Interceptor InputInterceptor

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	engine  Stepper
	session *domain.Session
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run feeds input chunks into the session until the input ends, ":done" or
// "exit" is entered, or a symbol outside the alphabet halts the session.
// It returns the Result of the whole session.
func (r *Runner) Run(ctx context.Context) (*domain.Result, error) {
	if r.engine == nil {
		return nil, fmt.Errorf("runner requires an engine (WithEngine)")
	}
	if r.session == nil {
		return nil, fmt.Errorf("runner requires a session (WithSession)")
	}

	handler := r.resolveHandler()
	interceptor := r.resolveInterceptor()
	session := r.session

	if err := handler.Output(ctx, Update{Session: session}); err != nil {
		return nil, fmt.Errorf("output error: %w", err)
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for !session.Halted() {
		inputCtx := signals.Context()

		line, err := handler.Input(inputCtx)
		if err != nil {
			signals.CheckRace()
			if inputCtx.Err() != nil {
				r.Logger.Debug("runner input: context cancelled", "err", inputCtx.Err())
				return nil, fmt.Errorf("%w: session %s left at %s", ErrInterrupted, session.ID, session.CurrentState)
			}
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("input error: %w", err)
		}

		switch line {
		case CommandDone, CommandExit, CommandQuit:
			return r.finish(ctx, handler, session)
		case CommandState:
			if err := handler.Output(ctx, Update{Session: session}); err != nil {
				return nil, fmt.Errorf("output error: %w", err)
			}
			continue
		case "":
			continue
		}

		symbols, err := interceptor(ctx, line)
		if err != nil {
			if errors.Is(err, ErrInputDiscarded) || errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8) {
				if err := handler.SystemOutput(ctx, err.Error()); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("input interceptor error: %w", err)
		}

		next, err := r.engine.Feed(ctx, session.ID, symbols)
		if err != nil {
			return nil, fmt.Errorf("feed error: %w", err)
		}
		r.Logger.Debug("fed", "session_id", next.ID, "symbols", symbols, "state", next.CurrentState)

		update := Update{Session: next, Steps: next.Trace[len(session.Trace):]}
		if err := handler.Output(ctx, update); err != nil {
			return nil, fmt.Errorf("output error: %w", err)
		}
		session = next
	}

	return r.finish(ctx, handler, session)
}

func (r *Runner) finish(ctx context.Context, handler IOHandler, session *domain.Session) (*domain.Result, error) {
	res, err := r.engine.Finish(context.WithoutCancel(ctx), session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to finish session %s: %w", session.ID, err)
	}
	if err := handler.Output(ctx, Update{Session: session, Result: res}); err != nil {
		return nil, fmt.Errorf("output error: %w", err)
	}
	return res, nil
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r.Handler
}

// resolveInterceptor returns the configured or default interceptor.
func (r *Runner) resolveInterceptor() InputInterceptor {
	if r.Interceptor != nil {
		return r.Interceptor
	}
	return SanitizeMiddleware()
}
