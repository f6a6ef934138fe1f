package automaton_test

import (
	"errors"
	"fmt"

	"github.com/aretw0/automaton"
	"github.com/aretw0/automaton/pkg/domain"
)

func endsInA() domain.Definition {
	return domain.Definition{
		ID:       "ends-in-a",
		States:   []string{"q0", "q1"},
		Alphabet: []string{"a", "b"},
		Transitions: map[string]map[string]string{
			"q0": {"a": "q1", "b": "q0"},
			"q1": {"a": "q1", "b": "q0"},
		},
		Initial: "q0",
		Finals:  []string{"q1"},
	}
}

func ExampleValidate() {
	def := endsInA()
	delete(def.Transitions["q1"], "b")
	def.Finals = append(def.Finals, "q9")

	_, err := automaton.Validate(def)
	fmt.Println(errors.Is(err, domain.ErrMalformedAutomaton))
	for _, v := range domain.Violations(err) {
		fmt.Println(v.Code, v.Element)
	}
	// Output:
	// true
	// unknown_final q9
	// missing_transition q1/b
}

func ExampleSimulate() {
	a, err := automaton.Validate(endsInA())
	if err != nil {
		panic(err)
	}

	for _, input := range []string{"aba", "ab", "abc"} {
		res := automaton.Simulate(a, input)
		fmt.Printf("%q: %s in %s after %d steps\n", input, res.Verdict(), res.FinalState, len(res.Trace))
	}

	res := automaton.Simulate(a, "abc")
	fmt.Println(res.Err())
	// Output:
	// "aba": accepted in q1 after 3 steps
	// "ab": rejected in q0 after 2 steps
	// "abc": invalid_input in q0 after 2 steps
	// unrecognized symbol "c" at index 2
}

func ExampleTraceAsGraph() {
	a, err := automaton.Validate(endsInA())
	if err != nil {
		panic(err)
	}

	g := automaton.TraceAsGraph(automaton.Simulate(a, "bba"))
	fmt.Println(len(g.Nodes), "states,", len(g.Edges), "edges")
	for _, e := range g.HighlightedPath {
		fmt.Printf("%s --%s--> %s\n", e.From, e.Symbol, e.To)
	}
	fmt.Println("accepted:", g.Accepted)
	// Output:
	// 2 states, 4 edges
	// q0 --b--> q0
	// q0 --b--> q0
	// q0 --a--> q1
	// accepted: true
}
