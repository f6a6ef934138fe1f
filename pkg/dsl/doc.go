/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing automata.

It allows developers to define DFAs using a type-safe, fluent builder pattern instead of
relying on external YAML or JSON files. This is particularly useful for tests, generated
automata, and leveraging IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/aretw0/automaton/pkg/dsl"
	)

	func main() {
		b := dsl.New("ends-in-a").Alphabet("ab")

		b.State("0").On("a", "1").On("b", "0")
		b.State("1").On("a", "1").On("b", "0").Final()

		a, err := b.Build()
		// ... a.Simulate("abba")
	}
*/
package dsl
