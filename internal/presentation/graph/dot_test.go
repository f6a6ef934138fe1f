package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/automaton/internal/presentation/graph"
	"github.com/stretchr/testify/assert"
)

func TestGenerateDOT_Structure(t *testing.T) {
	got := graph.GenerateDOT(endsInA.Graph())

	assert.True(t, strings.HasPrefix(got, "digraph \"ends-in-a\" {\n"))
	assert.True(t, strings.HasSuffix(got, "}\n"))
	assert.Contains(t, got, "__start -> \"q0\";")
	assert.Contains(t, got, "\"q0\";")
	assert.Contains(t, got, "\"q1\" [shape=doublecircle];")
	assert.Contains(t, got, "\"q0\" -> \"q1\" [label=\"a\"];")
	assert.NotContains(t, got, "fillcolor")
}

func TestGenerateDOT_Run(t *testing.T) {
	accepted := graph.GenerateDOT(endsInA.Simulate("ba").Graph())
	assert.Contains(t, accepted, "\"q1\" [shape=doublecircle, style=filled, fillcolor=green];")
	assert.Contains(t, accepted, "\"q0\" [style=filled, fillcolor=lightblue];")
	assert.Contains(t, accepted, "\"q0\" -> \"q0\" [label=\"b\", color=blue, penwidth=2];")

	rejected := graph.GenerateDOT(endsInA.Simulate("b").Graph())
	assert.Contains(t, rejected, "\"q0\" [style=filled, fillcolor=red];")
	assert.Contains(t, rejected, "\"q1\" [shape=doublecircle];")
}
