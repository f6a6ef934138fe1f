/*
Package domain contains the core domain models and the pure logic of the automaton engine.

It defines the formal definition of a deterministic finite automaton, the validated
(immutable) Automaton built from it, and the values a simulation produces. This package
is kept pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Definition: the raw 5-tuple (states, alphabet, transitions, initial, finals) as any source supplies it.
  - Automaton: a Definition that passed validation. Immutable and safe to share between goroutines.
  - Result: the verdict and Trace of one simulation run.
  - Graph: the renderer-independent view of an automaton plus the path a run took.
  - Session: an incremental run that is fed symbols over time.
*/
package domain
