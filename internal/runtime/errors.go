package runtime

import "errors"

var (
	// ErrInputTooLong is returned when an input exceeds the configured step ceiling.
	ErrInputTooLong = errors.New("input exceeds step limit")

	// ErrSessionHalted is returned when symbols are fed to a halted session.
	ErrSessionHalted = errors.New("session halted on unrecognized symbol")

	// ErrAutomatonMismatch is returned when a session is fed through an automaton
	// other than the one it was started with.
	ErrAutomatonMismatch = errors.New("session belongs to a different automaton")

	// ErrSessionCorrupt is returned when a session's current state is not a state
	// of its automaton, e.g. after the definition changed or a sealed session was
	// read without its keys.
	ErrSessionCorrupt = errors.New("session state unknown to automaton")
)
