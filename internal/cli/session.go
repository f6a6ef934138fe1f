package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aretw0/automaton/internal/presentation/tui"
	"github.com/aretw0/automaton/pkg/ports"
)

func openStore(opts EngineOptions) (ports.SessionStore, error) {
	store, _, err := createStore(opts)
	return store, err
}

// SessionList prints the persisted sessions.
func SessionList(ctx context.Context, opts EngineOptions, out io.Writer) error {
	store, err := openStore(opts)
	if err != nil {
		return err
	}

	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No active sessions found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tAUTOMATON\tSTATE\tSTATUS\tCONSUMED\tUPDATED")
	for _, id := range ids {
		s, err := store.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\tunreadable\t-\t-\n", id)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.AutomatonID, s.CurrentState, s.Status, len(s.Trace), s.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

// SessionInspect prints one session, as JSON or as a rendered report.
func SessionInspect(ctx context.Context, opts EngineOptions, sessionID string, asJSON bool, out io.Writer) error {
	store, err := openStore(opts)
	if err != nil {
		return err
	}

	s, err := store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	var render func(string) (string, error)
	if IsTerminal(out) {
		render = tui.NewRenderer()
	}
	printMarkdown(out, tui.SessionReport(s), render)
	return nil
}

// SessionRemove deletes the given sessions.
func SessionRemove(ctx context.Context, opts EngineOptions, sessionIDs []string, out io.Writer) error {
	store, err := openStore(opts)
	if err != nil {
		return err
	}

	for _, id := range sessionIDs {
		if err := store.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete session %s: %w", id, err)
		}
		fmt.Fprintf(out, "Session %s removed.\n", id)
	}
	return nil
}
