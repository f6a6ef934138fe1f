package domain

import "unicode/utf8"

// Simulate runs input through the automaton from its initial state.
//
// Every rune is a symbol. The run halts on the first rune outside the alphabet,
// which is recorded in Result.Rejected; such a run is never accepted. Simulate
// allocates a fresh Result and never touches the automaton, so concurrent calls
// are safe.
func (a *Automaton) Simulate(input string) *Result {
	res := &Result{
		AutomatonID: a.id,
		Input:       input,
		Trace:       make(Trace, 0, utf8.RuneCountInString(input)),
		automaton:   a,
	}

	cur := a.initial
	i := 0
	for _, r := range input {
		si, ok := a.symbolIdx[r]
		if !ok {
			res.Rejected = &Rejection{Index: i, Symbol: string(r)}
			break
		}
		next := a.delta[cur][si]
		res.Trace = append(res.Trace, Step{
			Index:  i,
			From:   a.states[cur],
			Symbol: a.symbols[si],
			To:     a.states[next],
		})
		cur = next
		i++
	}

	res.FinalState = a.states[cur]
	res.Accepted = res.Rejected == nil && a.final[cur]
	return res
}

// Step advances from state on one symbol. It returns ok=false when the symbol
// is outside the alphabet or the state is unknown.
func (a *Automaton) Step(state string, symbol rune) (Step, bool) {
	next, ok := a.Next(state, symbol)
	if !ok {
		return Step{}, false
	}
	return Step{From: state, Symbol: string(symbol), To: next}, true
}
