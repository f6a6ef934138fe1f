package domain

// Step is one transition taken during a run.
type Step struct {
	// Index is the position of Symbol in the input, counted in runes.
	Index  int    `json:"index"`
	From   string `json:"from"`
	Symbol string `json:"symbol"`
	To     string `json:"to"`
}

// Edge returns the transition the step followed.
func (s Step) Edge() Edge {
	return Edge{From: s.From, Symbol: s.Symbol, To: s.To}
}

// Trace is the ordered list of steps of one run.
type Trace []Step

// Edges returns the transitions of the trace in order.
func (t Trace) Edges() []Edge {
	edges := make([]Edge, len(t))
	for i, s := range t {
		edges[i] = s.Edge()
	}
	return edges
}

// Path returns the sequence of visited states, starting at initial.
func (t Trace) Path(initial string) []string {
	path := make([]string, 0, len(t)+1)
	path = append(path, initial)
	for _, s := range t {
		path = append(path, s.To)
	}
	return path
}

// Rejection records the input symbol that halted a run.
type Rejection struct {
	Index  int    `json:"index"`
	Symbol string `json:"symbol"`
}

// Err converts the rejection into an *UnrecognizedSymbolError.
func (r *Rejection) Err() error {
	if r == nil {
		return nil
	}
	return &UnrecognizedSymbolError{Index: r.Index, Symbol: r.Symbol}
}

// Verdict summarizes a Result.
type Verdict string

const (
	VerdictAccepted     Verdict = "accepted"
	VerdictRejected     Verdict = "rejected"
	VerdictInvalidInput Verdict = "invalid_input"
)

// Result is the outcome of simulating one input string.
type Result struct {
	AutomatonID string     `json:"automaton_id,omitempty"`
	Input       string     `json:"input"`
	FinalState  string     `json:"final_state"`
	Accepted    bool       `json:"accepted"`
	Trace       Trace      `json:"trace"`
	Rejected    *Rejection `json:"rejected,omitempty"`

	automaton *Automaton
}

// Verdict classifies the result.
func (r *Result) Verdict() Verdict {
	switch {
	case r.Rejected != nil:
		return VerdictInvalidInput
	case r.Accepted:
		return VerdictAccepted
	default:
		return VerdictRejected
	}
}

// Err returns an *UnrecognizedSymbolError when the run halted on a symbol outside
// the alphabet, nil otherwise. A plain rejection is not an error.
func (r *Result) Err() error {
	return r.Rejected.Err()
}

// Automaton returns the automaton that produced the result, or nil when the
// Result was decoded from elsewhere.
func (r *Result) Automaton() *Automaton { return r.automaton }

// Graph is shorthand for TraceAsGraph(r).
func (r *Result) Graph() Graph { return TraceAsGraph(r) }
