package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/automaton/pkg/domain"
)

// Report renders a run as a markdown document: a summary, the trace as a table
// and, when the run halted early, the unrecognized symbol.
func Report(res *domain.Result) string {
	var sb strings.Builder

	title := res.AutomatonID
	if title == "" {
		title = "run"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "- **Input:** `%s`\n", codeSafe(res.Input))
	fmt.Fprintf(&sb, "- **Verdict:** %s\n", res.Verdict())
	fmt.Fprintf(&sb, "- **Final state:** `%s`\n", codeSafe(res.FinalState))
	fmt.Fprintf(&sb, "- **Steps:** %d\n", len(res.Trace))

	if res.Rejected != nil {
		fmt.Fprintf(&sb, "\n> Halted on symbol `%s` at index %d: it is not part of the alphabet.\n",
			codeSafe(res.Rejected.Symbol), res.Rejected.Index)
	}

	if len(res.Trace) > 0 {
		sb.WriteString("\n| # | From | Symbol | To |\n|---|---|---|---|\n")
		for _, s := range res.Trace {
			fmt.Fprintf(&sb, "| %d | %s | `%s` | %s |\n", s.Index, cell(s.From), codeSafe(s.Symbol), cell(s.To))
		}
	}

	return sb.String()
}

// SessionReport renders the state of an incremental session.
func SessionReport(s *domain.Session) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Session %s\n\n", s.ID)
	fmt.Fprintf(&sb, "- **Automaton:** %s\n", s.AutomatonID)
	fmt.Fprintf(&sb, "- **Status:** %s\n", s.Status)
	fmt.Fprintf(&sb, "- **Consumed:** `%s`\n", codeSafe(s.Consumed))
	fmt.Fprintf(&sb, "- **Current state:** `%s`\n", codeSafe(s.CurrentState))
	fmt.Fprintf(&sb, "- **Accepting:** %v\n", s.Accepting)
	if s.Rejected != nil {
		fmt.Fprintf(&sb, "\n> Halted on symbol `%s` at index %d.\n", codeSafe(s.Rejected.Symbol), s.Rejected.Index)
	}
	return sb.String()
}

func codeSafe(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
