/*
Package automaton is a deterministic finite automaton (DFA) engine.

Given the formal definition of a DFA (states, alphabet, transition function, initial
state and accepting states) and an input string, it decides acceptance and records
every transition taken, so the run can be replayed or drawn.

# Concept

A Definition is raw data, whatever its source (a YAML file, a literal, the fluent
builder in pkg/dsl). Validate turns it into an Automaton: an immutable value whose
transition function is known to be total, so a simulation can only end in one of
three ways: accepted, rejected, or halted on a symbol outside the alphabet.

The Engine is the host around that pure core. It resolves automata by ID through a
DefinitionLoader (a Loam directory, an in-memory map, or the built-in catalog),
caches them, and adds cancellation, a step ceiling, lifecycle hooks, batch runs and
incremental sessions that are fed symbols over time.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/automaton"
		"github.com/aretw0/automaton/pkg/dsl"
	)

	func main() {
		a, err := dsl.New("ends-in-a").
			Alphabet("ab").
			State("q0").On("a", "q1").On("b", "q0").
			State("q1").On("a", "q1").On("b", "q0").Final().
			Done().
			Build()
		if err != nil {
			log.Fatal(err)
		}

		res := automaton.Simulate(a, "abba")
		fmt.Println(res.Verdict(), res.FinalState)

		g := automaton.TraceAsGraph(res)
		for _, e := range g.HighlightedPath {
			fmt.Printf("%s --%s--> %s\n", e.From, e.Symbol, e.To)
		}
	}

To serve a directory of definitions instead, use New("./automata") and address
automata by ID:

	eng, err := automaton.New("./automata")
	res, err := eng.Simulate(ctx, "regex-1", "babababbbab")
*/
package automaton
