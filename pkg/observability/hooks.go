package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/automaton/pkg/domain"
)

// LogHooks returns hooks that log every event. Steps are logged at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.DebugContext(ctx, "run_start",
				"automaton", e.AutomatonID,
				"session_id", e.SessionID,
				"input", e.Input,
			)
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step",
				"automaton", e.AutomatonID,
				"index", e.Step.Index,
				"from", e.Step.From,
				"symbol", e.Step.Symbol,
				"to", e.Step.To,
			)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			attrs := []any{
				"automaton", e.AutomatonID,
				"session_id", e.SessionID,
				"duration", e.Duration,
			}
			if e.Result != nil {
				attrs = append(attrs,
					"verdict", e.Result.Verdict(),
					"final_state", e.Result.FinalState,
				)
			}
			logger.InfoContext(ctx, "run_end", attrs...)
		},
	}
}

// Chain merges several hook sets; every callback runs in the given order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks

	var starts, ends []func(context.Context, *domain.RunEvent)
	var steps []func(context.Context, *domain.StepEvent)
	for _, h := range hooks {
		if h.OnRunStart != nil {
			starts = append(starts, h.OnRunStart)
		}
		if h.OnStep != nil {
			steps = append(steps, h.OnStep)
		}
		if h.OnRunEnd != nil {
			ends = append(ends, h.OnRunEnd)
		}
	}

	if len(starts) > 0 {
		out.OnRunStart = func(ctx context.Context, e *domain.RunEvent) {
			for _, fn := range starts {
				fn(ctx, e)
			}
		}
	}
	if len(steps) > 0 {
		out.OnStep = func(ctx context.Context, e *domain.StepEvent) {
			for _, fn := range steps {
				fn(ctx, e)
			}
		}
	}
	if len(ends) > 0 {
		out.OnRunEnd = func(ctx context.Context, e *domain.RunEvent) {
			for _, fn := range ends {
				fn(ctx, e)
			}
		}
	}
	return out
}
