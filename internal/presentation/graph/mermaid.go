package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/automaton/pkg/domain"
)

// link is one drawn arrow: every transition between the same pair of states,
// merged under a single label.
type link struct {
	From, To    string
	Symbols     []string
	Highlighted bool
}

// merge groups the edges of g by (from, to) in order of first appearance and
// marks the ones the highlighted path used.
func merge(g domain.Graph) []link {
	used := make(map[[2]string]bool, len(g.HighlightedPath))
	for _, e := range g.HighlightedPath {
		used[[2]string{e.From, e.To}] = true
	}

	index := make(map[[2]string]int)
	var links []link
	for _, e := range g.Edges {
		key := [2]string{e.From, e.To}
		if i, ok := index[key]; ok {
			links[i].Symbols = append(links[i].Symbols, e.Symbol)
			continue
		}
		index[key] = len(links)
		links = append(links, link{From: e.From, To: e.To, Symbols: []string{e.Symbol}, Highlighted: used[key]})
	}
	return links
}

// GenerateMermaid produces a Mermaid flowchart from g.
// It applies semantic styling:
// - Initial state: entered by an arrow from a small start marker
// - Final states: (((Double circle)))
// - Other states: ((Circle))
// When g carries a run, visited states and the edges taken are highlighted and
// the state the run ended in is colored by verdict.
func GenerateMermaid(g domain.Graph) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	if g.Initial != "" {
		fmt.Fprintf(&sb, "    __start(( )) --> %s\n", sanitizeMermaidID(g.Initial))
	}

	for _, node := range g.Nodes {
		safeID := sanitizeMermaidID(node)
		opener, closer := "((", "))"
		if g.IsFinal(node) {
			opener, closer = "(((", ")))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(node), closer)
	}

	links := merge(g)
	var highlighted []string
	for i, l := range links {
		label := escapeLabel(strings.Join(l.Symbols, ", "))
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", sanitizeMermaidID(l.From), label, sanitizeMermaidID(l.To))
		if l.Highlighted {
			// The start marker link takes index 0.
			offset := 0
			if g.Initial != "" {
				offset = 1
			}
			highlighted = append(highlighted, fmt.Sprint(i+offset))
		}
	}

	if g.FinalState == "" {
		return sb.String()
	}

	sb.WriteString("\n    %% Run Overlay\n")
	// Force black text (color:#000) for contrast on both light and dark themes.
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef accepted fill:#c8e6c9,stroke:#2e7d32,stroke-width:4px,color:#000;\n")
	sb.WriteString("    classDef rejected fill:#ffcdd2,stroke:#c62828,stroke-width:4px,color:#000;\n")

	visited := g.Visited()
	for _, node := range g.Nodes {
		if node == g.FinalState {
			continue
		}
		if visited[node] {
			fmt.Fprintf(&sb, "    class %s visited;\n", sanitizeMermaidID(node))
		}
	}

	verdictClass := "rejected"
	if g.Accepted {
		verdictClass = "accepted"
	}
	fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(g.FinalState), verdictClass)

	if len(highlighted) > 0 {
		fmt.Fprintf(&sb, "    linkStyle %s stroke:#01579b,stroke-width:3px;\n", strings.Join(highlighted, ","))
	}

	return sb.String()
}

// sanitizeMermaidID turns a state into a safe node ID. Numeric states get a
// prefix so that "0" stays distinct from Mermaid keywords and numbers.
func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return "s_" + s
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
