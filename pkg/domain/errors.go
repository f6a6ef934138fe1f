package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedAutomaton is matched by every validation failure (see MalformedError).
var ErrMalformedAutomaton = errors.New("malformed automaton")

// ErrUnrecognizedSymbol is matched by UnrecognizedSymbolError.
var ErrUnrecognizedSymbol = errors.New("unrecognized symbol")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrDefinitionNotFound is returned by loaders when an automaton ID is unknown.
var ErrDefinitionNotFound = errors.New("definition not found")

// ViolationCode classifies a validation failure.
type ViolationCode string

const (
	CodeEmptyStates       ViolationCode = "empty_states"
	CodeEmptyAlphabet     ViolationCode = "empty_alphabet"
	CodeInvalidState      ViolationCode = "invalid_state"
	CodeInvalidSymbol     ViolationCode = "invalid_symbol"
	CodeUnknownInitial    ViolationCode = "unknown_initial"
	CodeUnknownFinal      ViolationCode = "unknown_final"
	CodeUnknownSource     ViolationCode = "unknown_source"
	CodeUnknownSymbol     ViolationCode = "unknown_symbol"
	CodeUnknownTarget     ViolationCode = "unknown_target"
	CodeMissingTransition ViolationCode = "missing_transition"
)

// Violation describes one broken invariant of a Definition.
type Violation struct {
	Code    ViolationCode `json:"code"`
	Element string        `json:"element,omitempty"`
	Message string        `json:"message"`
}

// MalformedError reports every invariant a Definition violates.
type MalformedError struct {
	AutomatonID string
	Violations  []Violation
}

func (e *MalformedError) Error() string {
	prefix := ErrMalformedAutomaton.Error()
	if e.AutomatonID != "" {
		prefix = fmt.Sprintf("%s %q", prefix, e.AutomatonID)
	}
	if len(e.Violations) == 1 {
		return prefix + ": " + e.Violations[0].Message
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d violations:\n", prefix, len(e.Violations))
	for i, v := range e.Violations {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, v.Message)
	}
	return sb.String()
}

// Is makes errors.Is(err, ErrMalformedAutomaton) hold.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedAutomaton
}

// Violations returns the violations carried by err, or nil.
func Violations(err error) []Violation {
	var malformed *MalformedError
	if errors.As(err, &malformed) {
		return malformed.Violations
	}
	return nil
}

// UnrecognizedSymbolError is the error form of a Rejection.
type UnrecognizedSymbolError struct {
	Index  int
	Symbol string
}

func (e *UnrecognizedSymbolError) Error() string {
	return fmt.Sprintf("%s %q at index %d", ErrUnrecognizedSymbol, e.Symbol, e.Index)
}

func (e *UnrecognizedSymbolError) Is(target error) bool {
	return target == ErrUnrecognizedSymbol
}
