package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/automaton/internal/presentation/graph"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/runner"
)

// GraphOptions configures the graph command.
type GraphOptions struct {
	EngineOptions
	AutomatonID string
	// Input, when set, is simulated and its path highlighted.
	Input  *string
	Format string // mermaid (default), dot or json
}

// Graph prints the transition graph of an automaton.
func Graph(ctx context.Context, opts GraphOptions, out io.Writer) error {
	engine, err := createEngine(opts.EngineOptions, NewLogger(opts.Debug))
	if err != nil {
		return err
	}

	a, err := engine.Automaton(opts.AutomatonID)
	if err != nil {
		return err
	}
	g := a.Graph()

	if opts.Input != nil {
		input, err := runner.SanitizeInput(*opts.Input)
		if err != nil {
			return err
		}
		res, err := engine.Simulate(ctx, opts.AutomatonID, input)
		if err != nil {
			return err
		}
		g = res.Graph()
	}

	return writeGraph(out, g, opts.Format)
}

func writeGraph(out io.Writer, g domain.Graph, format string) error {
	switch format {
	case "", "mermaid":
		_, err := fmt.Fprintln(out, graph.GenerateMermaid(g))
		return err
	case "dot":
		_, err := fmt.Fprintln(out, graph.GenerateDOT(g))
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	default:
		return fmt.Errorf("unknown graph format %q (want mermaid, dot or json)", format)
	}
}
