// Package registry caches validated automata by ID so a definition is parsed
// and validated once, no matter how many requests simulate it.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/automaton/internal/compiler"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/ports"
)

// Registry manages the available automata.
type Registry struct {
	mu       sync.RWMutex
	automata map[string]*domain.Automaton

	loader ports.DefinitionLoader
	parser *compiler.Parser
}

// NewRegistry creates a registry backed by loader. A nil loader yields a registry
// that only serves automata added with Register.
func NewRegistry(loader ports.DefinitionLoader) *Registry {
	return &Registry{
		automata: make(map[string]*domain.Automaton),
		loader:   loader,
		parser:   compiler.NewParser(),
	}
}

// Register adds an automaton to the registry.
// If an automaton with the same ID exists, it is overwritten.
func (r *Registry) Register(a *domain.Automaton) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.automata[a.ID()] = a
}

// Get returns the automaton for id, loading and validating it on first use.
// Malformed definitions are not cached.
func (r *Registry) Get(id string) (*domain.Automaton, error) {
	r.mu.RLock()
	a, ok := r.automata[id]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	if r.loader == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDefinitionNotFound, id)
	}

	def, err := r.Definition(id)
	if err != nil {
		return nil, err
	}

	a, err = domain.NewAutomaton(*def)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have won the race; keep the first instance.
	if existing, ok := r.automata[id]; ok {
		return existing, nil
	}
	r.automata[id] = a
	return a, nil
}

// Definition loads and parses the raw definition for id without validating it.
// The loader key is the automaton's ID: sessions record it and resolve it again
// on every feed, so an `id` declared inside the document is overridden.
func (r *Registry) Definition(id string) (*domain.Definition, error) {
	if r.loader == nil {
		r.mu.RLock()
		a, ok := r.automata[id]
		r.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrDefinitionNotFound, id)
		}
		def := a.Definition()
		return &def, nil
	}

	raw, err := r.loader.GetDefinition(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load definition %s: %w", id, err)
	}
	def, err := r.parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse definition %s: %w", id, err)
	}
	if def.ID != "" && def.ID != id {
		slog.Debug("definition id overridden by loader key", "declared", def.ID, "key", id)
	}
	def.ID = id
	return def, nil
}

// IDs lists the known automata: everything the loader lists plus registered ones.
func (r *Registry) IDs() ([]string, error) {
	seen := make(map[string]bool)
	var ids []string

	if r.loader != nil {
		listed, err := r.loader.ListDefinitions()
		if err != nil {
			return nil, fmt.Errorf("failed to list definitions: %w", err)
		}
		for _, id := range listed {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for id := range r.automata {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Invalidate drops cached automata. With no ids the whole cache is cleared.
func (r *Registry) Invalidate(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(ids) == 0 {
		r.automata = make(map[string]*domain.Automaton)
		return
	}
	for _, id := range ids {
		delete(r.automata, id)
	}
}

// Len returns the number of cached automata.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.automata)
}
