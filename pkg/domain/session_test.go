package domain_test

import (
	"testing"

	"github.com/aretw0/automaton/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AdvanceMatchesSimulate(t *testing.T) {
	a := mustAutomaton(t, endsInA())

	s := domain.NewSession("s1", a)
	assert.Equal(t, "0", s.CurrentState)
	assert.False(t, s.Accepting)

	s = a.Advance(s, "ab")
	s = a.Advance(s, "ba")

	assert.Equal(t, "abba", s.Consumed)
	assert.True(t, s.Accepting)
	assert.Equal(t, a.Simulate("abba").Trace, s.Trace)

	assert.Equal(t, a.Simulate("abba"), a.Result(s))
}

func TestSession_AdvanceIsCopyOnWrite(t *testing.T) {
	a := mustAutomaton(t, endsInA())
	s := domain.NewSession("s1", a)

	next := a.Advance(s, "a")
	assert.Empty(t, s.Consumed)
	assert.Empty(t, s.Trace)
	assert.Equal(t, "a", next.Consumed)
}

func TestSession_HaltsOnUnrecognizedSymbol(t *testing.T) {
	a := mustAutomaton(t, endsInA())
	s := a.Advance(domain.NewSession("s1", a), "a")
	s = a.Advance(s, "bxa")

	require.True(t, s.Halted())
	assert.Equal(t, &domain.Rejection{Index: 2, Symbol: "x"}, s.Rejected)
	assert.Equal(t, "ab", s.Consumed)
	assert.False(t, s.Accepting)

	after := a.Advance(s, "a")
	assert.Equal(t, s.Consumed, after.Consumed)

	assert.Equal(t, a.Simulate("abx"), a.Result(s))
}
