package automaton_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/automaton"
	"github.com/aretw0/automaton/internal/runtime"
	"github.com/aretw0/automaton/internal/testutils"
	"github.com/aretw0/automaton/pkg/adapters/memory"
	"github.com/aretw0/automaton/pkg/catalog"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacade_Catalog(t *testing.T) {
	eng, err := automaton.New("")
	require.NoError(t, err)
	ctx := context.Background()

	ids, err := eng.List()
	require.NoError(t, err)
	assert.Equal(t, []string{catalog.RegexAB, catalog.RegexBinary}, ids)

	res, err := eng.Simulate(ctx, catalog.RegexBinary, "00101")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Len(t, res.Trace, 5)

	report, err := eng.Analyze(catalog.RegexAB)
	require.NoError(t, err)
	assert.False(t, report.EmptyLanguage)

	_, err = eng.Simulate(ctx, "missing", "a")
	assert.True(t, errors.Is(err, domain.ErrDefinitionNotFound))
}

func TestFacade_Directory(t *testing.T) {
	dir, _ := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, dir, map[string]string{
		"ends-in-a.yaml": `name: Ends in a
alphabet: [a, b]
states: [q0, q1]
initial: q0
finals: [q1]
transitions:
  q0: {a: q1, b: q0}
  q1: {a: q1, b: q0}
`,
		"broken.yaml": `alphabet: [a]
states: [q0]
initial: q0
finals: [q9]
transitions:
  q0: {}
`,
	})

	eng, err := automaton.New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	ids, err := eng.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"broken", "ends-in-a"}, ids)

	res, err := eng.Simulate(ctx, "ends-in-a", "bba")
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	def, err := eng.Definition("ends-in-a")
	require.NoError(t, err)
	assert.Equal(t, "Ends in a", def.Name)

	_, err = eng.Automaton("broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedAutomaton))
	assert.Len(t, domain.Violations(err), 2)
}

func TestFacade_SimulateBatch(t *testing.T) {
	eng, err := automaton.New("")
	require.NoError(t, err)

	inputs := []string{"00101", "11101", "0", "012"}
	results, err := eng.SimulateBatch(context.Background(), catalog.RegexBinary, inputs, 2)
	require.NoError(t, err)
	require.Len(t, results, len(inputs))

	for i, res := range results {
		assert.Equal(t, inputs[i], res.Input)
	}
	assert.True(t, results[0].Accepted)
	assert.True(t, results[1].Accepted)
	assert.False(t, results[2].Accepted)
	assert.Equal(t, domain.VerdictInvalidInput, results[3].Verdict())
}

func TestFacade_MaxSteps(t *testing.T) {
	eng, err := automaton.New("", automaton.WithMaxSteps(3))
	require.NoError(t, err)
	assert.Equal(t, 3, eng.MaxSteps())

	_, err = eng.Simulate(context.Background(), catalog.RegexBinary, "0000")
	assert.True(t, errors.Is(err, runtime.ErrInputTooLong))
}

func TestFacade_Hooks(t *testing.T) {
	var steps, ends atomic.Int32
	hooks := domain.LifecycleHooks{
		OnStep:   func(context.Context, *domain.StepEvent) { steps.Add(1) },
		OnRunEnd: func(context.Context, *domain.RunEvent) { ends.Add(1) },
	}

	eng, err := automaton.New("", automaton.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	_, err = eng.Simulate(context.Background(), catalog.RegexBinary, "0010")
	require.NoError(t, err)
	assert.Equal(t, int32(4), steps.Load())
	assert.Equal(t, int32(1), ends.Load())
}

func TestFacade_Sessions(t *testing.T) {
	store := memory.NewStore()
	eng, err := automaton.New("", automaton.WithSessionStore(store))
	require.NoError(t, err)
	ctx := context.Background()

	s, err := eng.Start(ctx, catalog.RegexBinary, "")
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	s, err = eng.Feed(ctx, s.ID, "001")
	require.NoError(t, err)
	s, err = eng.Feed(ctx, s.ID, "01")
	require.NoError(t, err)
	assert.Equal(t, "00101", s.Consumed)
	assert.True(t, s.Accepting)

	res, err := eng.Finish(ctx, s.ID)
	require.NoError(t, err)
	oneShot, err := eng.Simulate(ctx, catalog.RegexBinary, "00101")
	require.NoError(t, err)
	assert.Equal(t, oneShot.Trace, res.Trace)
	assert.Equal(t, oneShot.Accepted, res.Accepted)

	ids, err := eng.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{s.ID}, ids)

	require.NoError(t, eng.DeleteSession(ctx, s.ID))
	_, err = eng.Session(ctx, s.ID)
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))

	_, err = eng.Feed(ctx, s.ID, "0")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestFacade_SessionsUseLoaderKey(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"key": `
id: other
states: [q]
alphabet: [a]
transitions:
  q: {a: q}
initial: q
finals: [q]
`,
	})
	eng, err := automaton.New("", automaton.WithLoader(loader), automaton.WithSessionStore(memory.NewStore()))
	require.NoError(t, err)
	ctx := context.Background()

	s, err := eng.Start(ctx, "key", "s1")
	require.NoError(t, err)
	assert.Equal(t, "key", s.AutomatonID)

	s, err = eng.Feed(ctx, "s1", "aa")
	require.NoError(t, err)
	assert.Equal(t, "aa", s.Consumed)

	res, err := eng.Finish(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, "key", res.AutomatonID)
}

func TestFacade_FeedUnknownState(t *testing.T) {
	store := memory.NewStore()
	eng, err := automaton.New("", automaton.WithSessionStore(store))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s2", &domain.Session{
		ID:           "s2",
		AutomatonID:  catalog.RegexAB,
		CurrentState: "ghost",
		Status:       domain.SessionActive,
	}))

	_, err = eng.Feed(ctx, "s2", "a")
	assert.ErrorIs(t, err, runtime.ErrSessionCorrupt)

	stored, err := eng.Session(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionActive, stored.Status, "a corrupt session is not halted")
	assert.Nil(t, stored.Rejected)
}

func TestFacade_WatchInvalidatesCache(t *testing.T) {
	original := domain.Definition{
		ID:          "flip",
		States:      []string{"a", "b"},
		Alphabet:    []string{"x"},
		Transitions: map[string]map[string]string{"a": {"x": "b"}, "b": {"x": "a"}},
		Initial:     "a",
		Finals:      []string{"b"},
	}
	loader, err := memory.NewFromDefinitions(original)
	require.NoError(t, err)

	eng, err := automaton.New("", automaton.WithLoader(loader))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := eng.Watch(ctx)
	require.NoError(t, err)

	res, err := eng.Simulate(ctx, "flip", "x")
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	updated := original
	updated.Finals = []string{"a"}
	require.NoError(t, loader.Put(updated))

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change signal")
	}

	res, err = eng.Simulate(ctx, "flip", "x")
	require.NoError(t, err)
	assert.False(t, res.Accepted)
}

func TestFacade_WatchUnsupported(t *testing.T) {
	eng, err := automaton.New("", automaton.WithLoader(staticLoader{}))
	require.NoError(t, err)

	_, err = eng.Watch(context.Background())
	assert.Error(t, err)
}

type staticLoader struct{}

func (staticLoader) GetDefinition(id string) ([]byte, error) {
	return nil, domain.ErrDefinitionNotFound
}

func (staticLoader) ListDefinitions() ([]string, error) { return nil, nil }

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, automaton.VersionString())
}
