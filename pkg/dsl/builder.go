package dsl

import (
	"fmt"

	"github.com/aretw0/automaton/pkg/adapters/memory"
	"github.com/aretw0/automaton/pkg/domain"
)

// Builder manages the automaton construction.
type Builder struct {
	def    domain.Definition
	states map[string]*StateBuilder
}

// New creates a new automaton builder.
func New(id string) *Builder {
	return &Builder{
		def: domain.Definition{
			ID:          id,
			Transitions: make(map[string]map[string]string),
		},
		states: make(map[string]*StateBuilder),
	}
}

// Name sets the human readable name.
func (b *Builder) Name(name string) *Builder {
	b.def.Name = name
	return b
}

// Describe sets the description.
func (b *Builder) Describe(description string) *Builder {
	b.def.Description = description
	return b
}

// Meta attaches an opaque annotation.
func (b *Builder) Meta(key, value string) *Builder {
	if b.def.Metadata == nil {
		b.def.Metadata = make(map[string]string)
	}
	b.def.Metadata[key] = value
	return b
}

// Alphabet declares the input symbols. Each rune of symbols is one symbol.
func (b *Builder) Alphabet(symbols string) *Builder {
	for _, r := range symbols {
		b.def.Alphabet = append(b.def.Alphabet, string(r))
	}
	return b
}

// State declares a state (the first one declared becomes the initial state
// unless Initial is called). If the state already exists, it returns the existing builder.
func (b *Builder) State(id string) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{id: id, builder: b}
	b.states[id] = sb
	b.def.States = append(b.def.States, id)
	if b.def.Initial == "" {
		b.def.Initial = id
	}
	return sb
}

// Initial overrides the initial state.
func (b *Builder) Initial(id string) *Builder {
	b.State(id)
	b.def.Initial = id
	return b
}

// Definition returns the raw definition assembled so far.
func (b *Builder) Definition() domain.Definition {
	def := b.def
	def.States = append([]string(nil), b.def.States...)
	def.Alphabet = append([]string(nil), b.def.Alphabet...)
	def.Finals = append([]string(nil), b.def.Finals...)
	def.Transitions = make(map[string]map[string]string, len(b.def.Transitions))
	for from, row := range b.def.Transitions {
		cp := make(map[string]string, len(row))
		for sym, to := range row {
			cp[sym] = to
		}
		def.Transitions[from] = cp
	}
	if b.def.Metadata != nil {
		def.Metadata = make(map[string]string, len(b.def.Metadata))
		for k, v := range b.def.Metadata {
			def.Metadata[k] = v
		}
	}
	return def
}

// Build validates the definition and returns the automaton.
func (b *Builder) Build() (*domain.Automaton, error) {
	return domain.NewAutomaton(b.Definition())
}

// MustBuild is like Build but panics on a malformed definition.
// Intended for package-level fixtures and tests.
func (b *Builder) MustBuild() *domain.Automaton {
	a, err := b.Build()
	if err != nil {
		panic(err)
	}
	return a
}

// Loader compiles one or more builders into a memory Loader keyed by ID.
func Loader(builders ...*Builder) (*memory.Loader, error) {
	defs := make([]domain.Definition, 0, len(builders))
	for _, b := range builders {
		defs = append(defs, b.Definition())
	}

	loader, err := memory.NewFromDefinitions(defs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}

	return loader, nil
}
