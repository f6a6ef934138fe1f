package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/automaton"
	"github.com/aretw0/automaton/internal/presentation/tui"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/runner"
)

// StepOptions configures the interactive step command.
type StepOptions struct {
	EngineOptions
	AutomatonID string
	// SessionID names a persistent session; it is resumed when it exists.
	// Empty runs an ephemeral session.
	SessionID string
	// Fresh discards the stored session before starting.
	Fresh   bool
	JSON    bool
	Confirm bool
}

// RunStep feeds symbols read from in into a session, one line at a time,
// and reports every transition on out.
func RunStep(ctx context.Context, opts StepOptions, in io.Reader, out io.Writer) (*domain.Result, error) {
	logger := NewLogger(opts.Debug)
	if opts.SessionID != "" {
		opts.Persist = true
	}

	engine, err := createEngine(opts.EngineOptions, logger)
	if err != nil {
		return nil, err
	}

	a, err := engine.Automaton(opts.AutomatonID)
	if err != nil {
		return nil, err
	}

	var session *domain.Session
	if opts.SessionID == "" {
		session, err = engine.Start(ctx, opts.AutomatonID, "")
	} else {
		if opts.Fresh {
			if err := engine.DeleteSession(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
				return nil, fmt.Errorf("failed to discard session %s: %w", opts.SessionID, err)
			}
		}
		session, err = engine.SessionManager().LoadOrStart(ctx, a, opts.SessionID)
	}
	if err != nil {
		return nil, err
	}
	if len(session.Trace) > 0 && !opts.JSON {
		printSystemMessage(out, "Resuming session %s at %s (%d symbols consumed)", session.ID, session.CurrentState, len(session.Trace))
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(in, out)
	} else {
		var textOpts []runner.TextHandlerOption
		if IsTerminal(out) {
			tui.PrintBanner(out, automaton.Version)
			textOpts = append(textOpts,
				runner.WithTextHandlerRenderer(tui.NewRenderer()),
				runner.WithTextHandlerReport(tui.Report),
				runner.WithTextHandlerStateStyle(tui.State),
			)
		}
		handler = runner.NewTextHandler(in, out, textOpts...)
	}

	interceptor := runner.SanitizeMiddleware()
	if opts.Confirm && !opts.JSON {
		interceptor = runner.MultiInterceptor(interceptor, runner.ConfirmationMiddleware(handler, a.Recognizes))
	}

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
		runner.WithInterceptor(interceptor),
		runner.WithEngine(engine),
		runner.WithSession(session),
	)

	res, err := r.Run(ctx)
	if err != nil && isInterrupted(err) && opts.SessionID != "" {
		printSystemMessage(out, "Session saved. Resume with: automaton step %s --session %s", opts.AutomatonID, opts.SessionID)
	}
	return res, handleExecutionError(err)
}
