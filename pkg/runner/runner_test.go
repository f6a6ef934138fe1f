package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/automaton"
	"github.com/aretw0/automaton/pkg/catalog"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) (*automaton.Engine, *domain.Session) {
	t.Helper()
	eng, err := automaton.New("")
	require.NoError(t, err)
	s, err := eng.Start(context.Background(), catalog.RegexBinary, "")
	require.NoError(t, err)
	return eng, s
}

func TestRunner_Run_FeedsUntilEOF(t *testing.T) {
	eng, s := newEngine(t)
	out := &bytes.Buffer{}

	r := NewRunner(
		WithEngine(eng),
		WithSession(s),
		WithInputHandler(NewTextHandler(strings.NewReader("001\n\n01\n"), out)),
	)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00101", res.Input)
	assert.True(t, res.Accepted)
	assert.Len(t, res.Trace, 5)

	output := out.String()
	assert.Contains(t, output, "state: 0")
	assert.Contains(t, output, "  0 --0--> 1\n")
	assert.Contains(t, output, "state: 5 (accepting)")
	assert.Contains(t, output, "accepted: \"00101\" ended in 5 after 5 steps")
}

func TestRunner_Run_StopsOnHalt(t *testing.T) {
	eng, s := newEngine(t)
	out := &bytes.Buffer{}

	r := NewRunner(
		WithEngine(eng),
		WithSession(s),
		WithInputHandler(NewTextHandler(strings.NewReader("0x1\n11\n"), out)),
	)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictInvalidInput, res.Verdict())
	require.NotNil(t, res.Rejected)
	assert.Equal(t, 1, res.Rejected.Index)
	assert.Contains(t, out.String(), "halted: symbol \"x\" at index 1")
	// The second line is never read.
	assert.Len(t, res.Trace, 1)
}

func TestRunner_Run_Commands(t *testing.T) {
	eng, s := newEngine(t)
	out := &bytes.Buffer{}

	r := NewRunner(
		WithEngine(eng),
		WithSession(s),
		WithInputHandler(NewTextHandler(strings.NewReader("00\n:state\n:done\n11\n"), out)),
	)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00", res.Input)
	assert.Equal(t, 2, strings.Count(out.String(), "state: 2"))
}

func TestRunner_Run_DiscardsOversizedInput(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "4")
	eng, s := newEngine(t)
	out := &bytes.Buffer{}

	r := NewRunner(
		WithEngine(eng),
		WithSession(s),
		WithInputHandler(NewTextHandler(strings.NewReader("0000000\n00\n"), out)),
	)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00", res.Input)
	assert.Contains(t, out.String(), "[System] input exceeds maximum allowed size")
}

func TestRunner_Run_Cancelled(t *testing.T) {
	eng, s := newEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(
		WithEngine(eng),
		WithSession(s),
		WithInputHandler(NewTextHandler(strings.NewReader(""), &bytes.Buffer{})),
	)

	_, err := r.Run(ctx)
	assert.True(t, errors.Is(err, ErrInterrupted))
}

func TestRunner_Run_RequiresEngineAndSession(t *testing.T) {
	_, err := NewRunner().Run(context.Background())
	assert.Error(t, err)

	eng, _ := newEngine(t)
	_, err = NewRunner(WithEngine(eng)).Run(context.Background())
	assert.Error(t, err)
}

func TestRunner_Run_JSONHandler(t *testing.T) {
	eng, s := newEngine(t)
	out := &bytes.Buffer{}

	r := NewRunner(
		WithEngine(eng),
		WithSession(s),
		WithInputHandler(NewJSONHandler(strings.NewReader("\"00\"\n101\n"), out)),
	)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// initial state, two chunks, final result
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[3], `"result":`)
}
