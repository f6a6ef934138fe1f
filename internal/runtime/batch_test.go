package runtime_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/automaton/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_SimulateBatch_PreservesOrder(t *testing.T) {
	a := endsInA(t)
	engine := runtime.NewEngine()

	inputs := make([]string, 200)
	for i := range inputs {
		last := "a"
		if i%2 == 1 {
			last = "b"
		}
		inputs[i] = strings.Repeat("ab", i%7) + last
	}

	results, err := engine.SimulateBatch(context.Background(), a, inputs, 8)
	require.NoError(t, err)
	require.Len(t, results, len(inputs))

	for i, res := range results {
		assert.Equal(t, inputs[i], res.Input)
		assert.Equal(t, a.Simulate(inputs[i]), res)
	}
}

func TestEngine_SimulateBatch_FailsFast(t *testing.T) {
	a := endsInA(t)
	engine := runtime.NewEngine(runtime.WithMaxSteps(2))

	_, err := engine.SimulateBatch(context.Background(), a, []string{"a", "aaaa", "b"}, 0)
	assert.ErrorIs(t, err, runtime.ErrInputTooLong)
}

func TestEngine_SimulateBatch_Empty(t *testing.T) {
	results, err := runtime.NewEngine().SimulateBatch(context.Background(), endsInA(t), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}
