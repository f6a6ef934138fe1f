package domain

// Edge is a labelled transition between two states.
type Edge struct {
	From   string `json:"from"`
	Symbol string `json:"symbol"`
	To     string `json:"to"`
}

// Graph is a renderer-independent view of an automaton and, optionally, of the
// path one run took through it.
type Graph struct {
	AutomatonID string   `json:"automaton_id,omitempty"`
	Nodes       []string `json:"nodes"`
	Edges       []Edge   `json:"edges"`
	Initial     string   `json:"initial"`
	Finals      []string `json:"finals"`

	// HighlightedPath holds the trace edges in the order they were taken.
	HighlightedPath []Edge `json:"highlighted_path,omitempty"`
	// FinalState is the state a run ended in. Empty for a plain automaton graph.
	FinalState string     `json:"final_state,omitempty"`
	Accepted   bool       `json:"accepted"`
	Rejected   *Rejection `json:"rejected,omitempty"`
}

// Graph returns the automaton's structure with no highlighted path.
// Edges are ordered by state, then by symbol, in declaration order.
func (a *Automaton) Graph() Graph {
	edges := make([]Edge, 0, len(a.states)*len(a.symbols))
	for i, from := range a.states {
		for j, sym := range a.symbols {
			edges = append(edges, Edge{From: from, Symbol: sym, To: a.states[a.delta[i][j]]})
		}
	}
	return Graph{
		AutomatonID: a.id,
		Nodes:       a.States(),
		Edges:       edges,
		Initial:     a.Initial(),
		Finals:      a.Finals(),
	}
}

// TraceAsGraph returns the automaton's structure plus the path r took.
// When r carries no automaton (e.g. it was decoded from JSON) the graph is
// limited to the states and edges the trace itself visited.
func TraceAsGraph(r *Result) Graph {
	if r == nil {
		return Graph{}
	}

	var g Graph
	if r.automaton != nil {
		g = r.automaton.Graph()
	} else {
		g = graphFromTrace(r.Trace, r.FinalState)
	}

	g.HighlightedPath = r.Trace.Edges()
	g.FinalState = r.FinalState
	g.Accepted = r.Accepted
	if r.Rejected != nil {
		rej := *r.Rejected
		g.Rejected = &rej
	}
	return g
}

func graphFromTrace(t Trace, finalState string) Graph {
	var g Graph
	seen := make(map[string]bool)
	addNode := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		g.Nodes = append(g.Nodes, s)
	}

	if len(t) > 0 {
		g.Initial = t[0].From
	} else {
		g.Initial = finalState
	}
	addNode(g.Initial)

	edgeSeen := make(map[Edge]bool)
	for _, s := range t {
		addNode(s.From)
		addNode(s.To)
		e := s.Edge()
		if !edgeSeen[e] {
			edgeSeen[e] = true
			g.Edges = append(g.Edges, e)
		}
	}
	addNode(finalState)
	return g
}

// Visited returns the set of states on the highlighted path, including the initial state.
func (g Graph) Visited() map[string]bool {
	visited := make(map[string]bool, len(g.HighlightedPath)+1)
	if g.FinalState != "" || len(g.HighlightedPath) > 0 {
		visited[g.Initial] = true
	}
	for _, e := range g.HighlightedPath {
		visited[e.From] = true
		visited[e.To] = true
	}
	return visited
}

// IsFinal reports whether state is listed in g.Finals.
func (g Graph) IsFinal(state string) bool {
	for _, f := range g.Finals {
		if f == state {
			return true
		}
	}
	return false
}
