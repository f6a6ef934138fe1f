package dsl

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	id      string
	builder *Builder
}

// On declares the transition taken from this state on symbol.
// The target state is declared implicitly.
func (s *StateBuilder) On(symbol, to string) *StateBuilder {
	b := s.builder
	b.State(to)
	row, ok := b.def.Transitions[s.id]
	if !ok {
		row = make(map[string]string)
		b.def.Transitions[s.id] = row
	}
	row[symbol] = to
	return s
}

// Loop sends every symbol of the alphabet not yet mapped back to this state.
// Handy for trap and accept-all states.
func (s *StateBuilder) Loop() *StateBuilder {
	row := s.builder.def.Transitions[s.id]
	for _, sym := range s.builder.def.Alphabet {
		if _, ok := row[sym]; !ok {
			s.On(sym, s.id)
			row = s.builder.def.Transitions[s.id]
		}
	}
	return s
}

// Final marks the state as accepting.
func (s *StateBuilder) Final() *StateBuilder {
	for _, f := range s.builder.def.Finals {
		if f == s.id {
			return s
		}
	}
	s.builder.def.Finals = append(s.builder.def.Finals, s.id)
	return s
}

// State switches to another state of the same builder.
func (s *StateBuilder) State(id string) *StateBuilder {
	return s.builder.State(id)
}

// Done returns the parent builder.
func (s *StateBuilder) Done() *Builder {
	return s.builder
}
