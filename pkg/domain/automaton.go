package domain

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

const (
	noTransition      = -1
	invalidTransition = -2
)

// Automaton is a validated DFA. It can only be built by NewAutomaton and is never
// mutated afterwards, so a single instance may be shared by any number of goroutines.
type Automaton struct {
	id          string
	name        string
	description string
	metadata    map[string]string

	states    []string
	stateIdx  map[string]int
	symbols   []string
	symbolIdx map[rune]int

	// delta[state][symbol] is the index of the successor state.
	delta   [][]int
	initial int
	final   []bool
}

// NewAutomaton validates def and builds the Automaton it describes.
// All broken invariants are reported together in a *MalformedError.
func NewAutomaton(def Definition) (*Automaton, error) {
	var vs []Violation
	report := func(code ViolationCode, element, format string, args ...any) {
		vs = append(vs, Violation{Code: code, Element: element, Message: fmt.Sprintf(format, args...)})
	}

	a := &Automaton{
		id:          def.ID,
		name:        def.Name,
		description: def.Description,
		metadata:    copyStringMap(def.Metadata),
		stateIdx:    make(map[string]int, len(def.States)),
		symbolIdx:   make(map[rune]int, len(def.Alphabet)),
		initial:     noTransition,
	}

	// States (set semantics: duplicates collapse)
	if len(def.States) == 0 {
		report(CodeEmptyStates, "", "automaton must declare at least one state")
	}
	for _, s := range def.States {
		if s == "" {
			report(CodeInvalidState, "", "state identifiers must not be empty")
			continue
		}
		if _, dup := a.stateIdx[s]; dup {
			continue
		}
		a.stateIdx[s] = len(a.states)
		a.states = append(a.states, s)
	}

	// Alphabet
	if len(def.Alphabet) == 0 {
		report(CodeEmptyAlphabet, "", "automaton must declare at least one input symbol")
	}
	for _, sym := range def.Alphabet {
		r, ok := symbolRune(sym)
		if !ok {
			report(CodeInvalidSymbol, sym, "symbol %q must be exactly one valid character other than U+FFFD", sym)
			continue
		}
		if _, dup := a.symbolIdx[r]; dup {
			continue
		}
		a.symbolIdx[r] = len(a.symbols)
		a.symbols = append(a.symbols, sym)
	}

	// Initial state
	switch idx, ok := a.stateIdx[def.Initial]; {
	case def.Initial == "":
		report(CodeUnknownInitial, "", "initial state is not set")
	case !ok:
		report(CodeUnknownInitial, def.Initial, "initial state %q is not a declared state", def.Initial)
	default:
		a.initial = idx
	}

	// Final states
	a.final = make([]bool, len(a.states))
	for _, f := range def.Finals {
		idx, ok := a.stateIdx[f]
		if !ok {
			report(CodeUnknownFinal, f, "final state %q is not a declared state", f)
			continue
		}
		a.final[idx] = true
	}

	// Transition function
	a.delta = make([][]int, len(a.states))
	for i := range a.delta {
		row := make([]int, len(a.symbols))
		for j := range row {
			row[j] = noTransition
		}
		a.delta[i] = row
	}

	for _, from := range sortedKeys(def.Transitions) {
		fi, ok := a.stateIdx[from]
		if !ok {
			report(CodeUnknownSource, from, "transitions declared for undeclared state %q", from)
			continue
		}
		row := def.Transitions[from]
		for _, sym := range sortedKeys(row) {
			to := row[sym]
			r, ok := symbolRune(sym)
			si, inAlphabet := a.symbolIdx[r]
			if !ok || !inAlphabet {
				report(CodeUnknownSymbol, from+"/"+sym, "transition from %q on %q uses a symbol outside the alphabet", from, sym)
				continue
			}
			ti, ok := a.stateIdx[to]
			if !ok {
				report(CodeUnknownTarget, from+"/"+sym, "transition from %q on %q targets undeclared state %q", from, sym, to)
				a.delta[fi][si] = invalidTransition
				continue
			}
			a.delta[fi][si] = ti
		}
	}

	// Totality over States x Alphabet
	for i, s := range a.states {
		for j, sym := range a.symbols {
			if a.delta[i][j] == noTransition {
				report(CodeMissingTransition, s+"/"+sym, "state %q has no transition on %q", s, sym)
			}
		}
	}

	if len(vs) > 0 {
		return nil, &MalformedError{AutomatonID: def.ID, Violations: vs}
	}
	return a, nil
}

// ID returns the identifier of the definition the automaton was built from.
func (a *Automaton) ID() string { return a.id }

// Name returns the human readable name (may be empty).
func (a *Automaton) Name() string { return a.name }

// Description returns the free-form description (may be empty).
func (a *Automaton) Description() string { return a.description }

// Metadata returns a copy of the opaque annotations.
func (a *Automaton) Metadata() map[string]string { return copyStringMap(a.metadata) }

// States returns the states in declaration order.
func (a *Automaton) States() []string { return append([]string(nil), a.states...) }

// Alphabet returns the symbols in declaration order.
func (a *Automaton) Alphabet() []string { return append([]string(nil), a.symbols...) }

// Initial returns the initial state.
func (a *Automaton) Initial() string { return a.states[a.initial] }

// Finals returns the accepting states in declaration order.
func (a *Automaton) Finals() []string {
	finals := make([]string, 0, len(a.states))
	for i, s := range a.states {
		if a.final[i] {
			finals = append(finals, s)
		}
	}
	return finals
}

// IsFinal reports whether state is an accepting state.
func (a *Automaton) IsFinal(state string) bool {
	idx, ok := a.stateIdx[state]
	return ok && a.final[idx]
}

// HasState reports whether state is declared.
func (a *Automaton) HasState(state string) bool {
	_, ok := a.stateIdx[state]
	return ok
}

// Recognizes reports whether r belongs to the alphabet.
func (a *Automaton) Recognizes(r rune) bool {
	_, ok := a.symbolIdx[r]
	return ok
}

// Next returns the successor of state on symbol.
// ok is false when state is undeclared or symbol is outside the alphabet.
func (a *Automaton) Next(state string, symbol rune) (next string, ok bool) {
	si, ok := a.stateIdx[state]
	if !ok {
		return "", false
	}
	sym, ok := a.symbolIdx[symbol]
	if !ok {
		return "", false
	}
	return a.states[a.delta[si][sym]], true
}

// Definition rebuilds a Definition equivalent to the one the automaton was built from.
func (a *Automaton) Definition() Definition {
	transitions := make(map[string]map[string]string, len(a.states))
	for i, s := range a.states {
		row := make(map[string]string, len(a.symbols))
		for j, sym := range a.symbols {
			row[sym] = a.states[a.delta[i][j]]
		}
		transitions[s] = row
	}
	return Definition{
		ID:          a.id,
		Name:        a.name,
		Description: a.description,
		States:      a.States(),
		Alphabet:    a.Alphabet(),
		Transitions: transitions,
		Initial:     a.Initial(),
		Finals:      a.Finals(),
		Metadata:    a.Metadata(),
	}
}

// symbolRune rejects U+FFFD: Simulate decodes every malformed byte to it, so an
// alphabet containing it would accept invalid UTF-8.
func symbolRune(sym string) (rune, bool) {
	if utf8.RuneCountInString(sym) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(sym)
	return r, r != utf8.RuneError
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
