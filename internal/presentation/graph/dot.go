package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/automaton/pkg/domain"
)

// GenerateDOT produces a Graphviz digraph from g, styled like GenerateMermaid.
func GenerateDOT(g domain.Graph) string {
	var sb strings.Builder

	name := g.AutomatonID
	if name == "" {
		name = "automaton"
	}
	fmt.Fprintf(&sb, "digraph %s {\n", strconv.Quote(name))
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=circle];\n")

	if g.Initial != "" {
		sb.WriteString("    __start [shape=point];\n")
		fmt.Fprintf(&sb, "    __start -> %s;\n", strconv.Quote(g.Initial))
	}

	visited := g.Visited()
	for _, node := range g.Nodes {
		var attrs []string
		if g.IsFinal(node) {
			attrs = append(attrs, "shape=doublecircle")
		}
		switch {
		case g.FinalState != "" && node == g.FinalState:
			color := "red"
			if g.Accepted {
				color = "green"
			}
			attrs = append(attrs, "style=filled", "fillcolor="+color)
		case g.FinalState != "" && visited[node]:
			attrs = append(attrs, "style=filled", "fillcolor=lightblue")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&sb, "    %s;\n", strconv.Quote(node))
			continue
		}
		fmt.Fprintf(&sb, "    %s [%s];\n", strconv.Quote(node), strings.Join(attrs, ", "))
	}

	for _, l := range merge(g) {
		attrs := []string{"label=" + strconv.Quote(strings.Join(l.Symbols, ", "))}
		if l.Highlighted {
			attrs = append(attrs, "color=blue", "penwidth=2")
		}
		fmt.Fprintf(&sb, "    %s -> %s [%s];\n", strconv.Quote(l.From), strconv.Quote(l.To), strings.Join(attrs, ", "))
	}

	sb.WriteString("}\n")
	return sb.String()
}
