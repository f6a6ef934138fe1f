package runtime

import (
	"context"
	goruntime "runtime"

	"github.com/aretw0/automaton/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// SimulateBatch runs every input through a concurrently, sharing the immutable
// automaton between at most workers goroutines (GOMAXPROCS when workers <= 0).
// Results are returned in input order. The first error cancels the batch.
func (e *Engine) SimulateBatch(ctx context.Context, a *domain.Automaton, inputs []string, workers int) ([]*domain.Result, error) {
	if workers <= 0 {
		workers = goruntime.GOMAXPROCS(0)
	}

	results := make([]*domain.Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, input := range inputs {
		g.Go(func() error {
			res, err := e.Simulate(gctx, a, input)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.logger.Debug("batch finished", "automaton", a.ID(), "inputs", len(inputs), "workers", workers)
	return results, nil
}
