package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/automaton"
	"github.com/aretw0/automaton/internal/compiler"
	"github.com/aretw0/automaton/internal/validator"
)

// ValidateOptions configures the validate command.
type ValidateOptions struct {
	EngineOptions
	// IDs restricts the check to these definitions. Empty checks all of them.
	IDs   []string
	Watch bool
}

// Validate checks that every definition describes a complete DFA and prints
// structural warnings for the valid ones. With Watch it re-checks on every
// change until ctx is done.
func Validate(ctx context.Context, opts ValidateOptions, out io.Writer) error {
	engine, err := createEngine(opts.EngineOptions, NewLogger(opts.Debug))
	if err != nil {
		return err
	}
	if !opts.Watch {
		return validateOnce(engine, opts.IDs, out)
	}
	return watchValidate(ctx, engine, opts.IDs, out)
}

func validateOnce(engine *automaton.Engine, ids []string, out io.Writer) error {
	if len(ids) == 0 {
		var err error
		if ids, err = engine.List(); err != nil {
			return fmt.Errorf("failed to list definitions: %w", err)
		}
	}
	sort.Strings(ids)

	if err := validator.ValidateDefinitions(engine.Loader(), compiler.NewParser(), ids...); err != nil {
		return err
	}

	for _, id := range ids {
		report, err := engine.Analyze(id)
		if err != nil {
			return err
		}
		for _, w := range report.Warnings() {
			fmt.Fprintf(out, "warning: %s: %s\n", id, w)
		}
	}
	fmt.Fprintf(out, "✓ %d definition(s) valid\n", len(ids))
	return nil
}

// watchValidate reports failures instead of returning them, so a broken save
// does not end the watch.
func watchValidate(ctx context.Context, engine *automaton.Engine, ids []string, out io.Writer) error {
	changes, err := engine.Watch(ctx)
	if err != nil {
		return err
	}

	check := func() {
		if err := validateOnce(engine, ids, out); err != nil {
			printSystemMessage(out, "%v", err)
		}
	}

	check()
	printSystemMessage(out, "Watching for changes (Ctrl+C to stop)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			printSystemMessage(out, "Definitions changed, re-validating")
			check()
		}
	}
}
