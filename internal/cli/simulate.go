package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/automaton/internal/presentation/graph"
	"github.com/aretw0/automaton/internal/presentation/tui"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/runner"
)

// SimulateOptions configures the simulate command.
type SimulateOptions struct {
	EngineOptions
	AutomatonID string
	Inputs      []string
	// File holds one input per line; "-" reads stdin.
	File    string
	JSON    bool
	Report  bool
	Graph   string // "", "mermaid" or "dot"
	Workers int
}

// SimulateSummary counts the verdicts of a simulate run.
type SimulateSummary struct {
	Accepted, Rejected, Invalid int
}

// AllAccepted reports whether every input was accepted.
func (s SimulateSummary) AllAccepted() bool {
	return s.Rejected == 0 && s.Invalid == 0
}

type resultJSON struct {
	*domain.Result
	Outcome domain.Verdict `json:"verdict"`
}

// ErrNoInput is returned when simulate is given neither inputs nor a file.
var ErrNoInput = errors.New(`no input given: pass inputs, --file, or "" for the empty string`)

// Simulate runs every input through the automaton and prints one verdict per input.
func Simulate(ctx context.Context, opts SimulateOptions, stdin io.Reader, out io.Writer) (SimulateSummary, error) {
	var summary SimulateSummary
	if len(opts.Inputs) == 0 && opts.File == "" {
		return summary, ErrNoInput
	}

	inputs := append([]string(nil), opts.Inputs...)
	if opts.File != "" {
		lines, err := readInputs(opts.File, stdin)
		if err != nil {
			return summary, err
		}
		inputs = append(inputs, lines...)
	}
	switch opts.Graph {
	case "", "mermaid", "dot":
	default:
		return summary, fmt.Errorf("unknown graph format %q (want mermaid or dot)", opts.Graph)
	}
	for i, input := range inputs {
		if _, err := runner.SanitizeInput(input); err != nil {
			return summary, fmt.Errorf("input %d: %w", i+1, err)
		}
	}

	engine, err := createEngine(opts.EngineOptions, NewLogger(opts.Debug))
	if err != nil {
		return summary, err
	}

	results, err := engine.SimulateBatch(ctx, opts.AutomatonID, inputs, opts.Workers)
	if err != nil {
		return summary, err
	}

	tty := IsTerminal(out)
	var render runner.ContentRenderer
	if tty {
		render = tui.NewRenderer()
	}

	enc := json.NewEncoder(out)
	for _, res := range results {
		switch res.Verdict() {
		case domain.VerdictAccepted:
			summary.Accepted++
		case domain.VerdictRejected:
			summary.Rejected++
		default:
			summary.Invalid++
		}

		if opts.JSON {
			if err := enc.Encode(resultJSON{Result: res, Outcome: res.Verdict()}); err != nil {
				return summary, err
			}
			continue
		}

		if opts.Report {
			printMarkdown(out, tui.Report(res), render)
		} else {
			printResult(out, res, tty)
		}

		switch opts.Graph {
		case "":
		case "mermaid":
			fmt.Fprintln(out, graph.GenerateMermaid(res.Graph()))
		case "dot":
			fmt.Fprintln(out, graph.GenerateDOT(res.Graph()))
		}
	}
	return summary, nil
}

func printResult(w io.Writer, res *domain.Result, tty bool) {
	verdict := string(res.Verdict())
	if tty {
		verdict = tui.Verdict(res)
	}
	fmt.Fprintf(w, "%s %q -> %s (%d steps)", verdict, res.Input, res.FinalState, len(res.Trace))
	if res.Rejected != nil {
		fmt.Fprintf(w, "; halted on %q at %d", res.Rejected.Symbol, res.Rejected.Index)
	}
	fmt.Fprintln(w)
}

func printMarkdown(w io.Writer, markdown string, render runner.ContentRenderer) {
	if render != nil {
		if out, err := render(markdown); err == nil {
			markdown = out
		}
	}
	fmt.Fprintln(w, strings.TrimSpace(markdown))
}

// readInputs reads one input per line. Line endings are dropped; everything
// else, spaces included, is part of the input.
func readInputs(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open inputs: %w", err)
		}
		defer f.Close()
		r = f
	}

	var inputs []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), runner.MaxInputSize()+2)
	for scanner.Scan() {
		inputs = append(inputs, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inputs: %w", err)
	}
	return inputs, nil
}
