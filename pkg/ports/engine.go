package ports

import (
	"context"

	"github.com/aretw0/automaton/pkg/domain"
)

// Simulator is the host engine as seen by driving adapters (HTTP, MCP).
// Implementations must be safe for concurrent use.
type Simulator interface {
	// Simulate runs input through a and returns its Result.
	// Unrecognized symbols are reported in the Result, not as errors.
	Simulate(ctx context.Context, a *domain.Automaton, input string) (*domain.Result, error)

	// SimulateBatch runs every input through a, returning results in input order.
	SimulateBatch(ctx context.Context, a *domain.Automaton, inputs []string, workers int) ([]*domain.Result, error)
}
