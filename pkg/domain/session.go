package domain

import (
	"time"
	"unicode/utf8"
)

// SessionStatus tells whether a session still accepts symbols.
type SessionStatus string

const (
	SessionActive SessionStatus = "active" // Symbols may be fed
	SessionHalted SessionStatus = "halted" // An unrecognized symbol stopped the run
)

// Session is a run that is fed symbols over time instead of all at once.
// Sessions are values: Advance returns a new Session and leaves the receiver untouched.
type Session struct {
	ID           string        `json:"id"`
	AutomatonID  string        `json:"automaton_id"`
	CurrentState string        `json:"current_state"`
	Consumed     string        `json:"consumed"`
	Trace        Trace         `json:"trace"`
	Status       SessionStatus `json:"status"`

	// Accepting is true while CurrentState is final and no symbol was rejected.
	Accepting bool       `json:"accepting"`
	Rejected  *Rejection `json:"rejected,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Sealed carries the encrypted session when a sealing store wraps the backend.
	// Only ID, AutomatonID, Status and UpdatedAt stay readable next to it.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession starts a session at the automaton's initial state.
func NewSession(id string, a *Automaton) *Session {
	return &Session{
		ID:           id,
		AutomatonID:  a.id,
		CurrentState: a.Initial(),
		Trace:        Trace{},
		Status:       SessionActive,
		Accepting:    a.final[a.initial],
		UpdatedAt:    time.Now(),
	}
}

// Halted reports whether the session stopped on an unrecognized symbol.
func (s *Session) Halted() bool { return s.Status == SessionHalted }

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Trace = make(Trace, len(s.Trace))
	copy(c.Trace, s.Trace)
	if s.Rejected != nil {
		rej := *s.Rejected
		c.Rejected = &rej
	}
	return &c
}

// Advance feeds symbols to the session and returns the resulting session.
// Feeding stops at the first unrecognized symbol, which halts the session.
// The rune index of a step or rejection counts from the start of the session.
// Advance on a halted session returns an unchanged copy.
func (a *Automaton) Advance(s *Session, symbols string) *Session {
	next := s.Clone()
	if next.Halted() {
		return next
	}

	idx := utf8.RuneCountInString(next.Consumed)
	for _, r := range symbols {
		step, ok := a.Step(next.CurrentState, r)
		if !ok {
			next.Rejected = &Rejection{Index: idx, Symbol: string(r)}
			next.Status = SessionHalted
			break
		}
		step.Index = idx
		next.Trace = append(next.Trace, step)
		next.Consumed += step.Symbol
		next.CurrentState = step.To
		idx++
	}

	next.Accepting = next.Rejected == nil && a.IsFinal(next.CurrentState)
	next.UpdatedAt = time.Now()
	return next
}

// Result converts the session into the Result a one-shot run over the same
// symbols would have produced.
func (a *Automaton) Result(s *Session) *Result {
	input := s.Consumed
	if s.Rejected != nil {
		input += s.Rejected.Symbol
	}
	res := &Result{
		AutomatonID: a.id,
		Input:       input,
		FinalState:  s.CurrentState,
		Accepted:    s.Accepting,
		Trace:       make(Trace, len(s.Trace)),
		automaton:   a,
	}
	copy(res.Trace, s.Trace)
	if s.Rejected != nil {
		rej := *s.Rejected
		res.Rejected = &rej
	}
	return res
}
