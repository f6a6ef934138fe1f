package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/automaton/internal/runtime"
	"github.com/aretw0/automaton/pkg/catalog"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regexBinary(t *testing.T) *domain.Automaton {
	t.Helper()
	def, ok := catalog.Get(catalog.RegexBinary)
	require.True(t, ok)
	a, err := domain.NewAutomaton(def)
	require.NoError(t, err)
	return a
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	eng := runtime.NewEngine(runtime.WithLifecycleHooks(m.Hooks()))
	a := regexBinary(t)
	ctx := context.Background()

	for _, in := range []string{"00101", "11101", "0", "01x"} {
		_, err := eng.Simulate(ctx, a, in)
		require.NoError(t, err)
	}

	id := catalog.RegexBinary
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Runs.WithLabelValues(id, string(domain.VerdictAccepted))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(id, string(domain.VerdictRejected))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(id, string(domain.VerdictInvalidInput))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues(id)))
	// 5 + 5 + 1 + 2 transitions
	assert.Equal(t, 13.0, testutil.ToFloat64(m.Steps.WithLabelValues(id)))

	assert.Equal(t, 1, testutil.CollectAndCount(m.RunDuration))
	count, err := testutil.GatherAndCount(reg, "automaton_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestChain(t *testing.T) {
	var order []string
	first := domain.LifecycleHooks{
		OnRunEnd: func(context.Context, *domain.RunEvent) { order = append(order, "first") },
	}
	second := domain.LifecycleHooks{
		OnRunStart: func(context.Context, *domain.RunEvent) { order = append(order, "start") },
		OnRunEnd:   func(context.Context, *domain.RunEvent) { order = append(order, "second") },
	}

	hooks := observability.Chain(first, second)
	assert.Nil(t, hooks.OnStep)

	eng := runtime.NewEngine(runtime.WithLifecycleHooks(hooks))
	_, err := eng.Simulate(context.Background(), regexBinary(t), "0")
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "first", "second"}, order)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	eng := runtime.NewEngine(runtime.WithLifecycleHooks(observability.LogHooks(logger)))
	_, err := eng.Simulate(context.Background(), regexBinary(t), "00")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"run_start"`)
	assert.Contains(t, out, `"msg":"step"`)
	assert.Contains(t, out, `"msg":"run_end"`)
	assert.Contains(t, out, `"verdict":"rejected"`)
}
