package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/automaton/pkg/domain"
)

// Loader implements ports.DefinitionLoader using an in-memory map.
// Definitions may be replaced at runtime with Put/Remove; watchers are notified.
type Loader struct {
	mu       sync.RWMutex
	defs     map[string][]byte
	watchers []chan struct{}
}

// NewLoader creates a new Loader with the provided raw data (YAML or JSON strings).
func NewLoader(data map[string]string) *Loader {
	defs := make(map[string][]byte, len(data))
	for k, v := range data {
		defs[k] = []byte(v)
	}
	return &Loader{defs: defs}
}

// NewFromDefinitions creates a new Loader from domain objects.
// This handles serialization automatically, improving DX for tests.
func NewFromDefinitions(defs ...domain.Definition) (*Loader, error) {
	l := &Loader{defs: make(map[string][]byte, len(defs))}
	for _, d := range defs {
		if err := l.put(d); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Put adds or replaces a definition and notifies watchers.
func (l *Loader) Put(def domain.Definition) error {
	if err := l.put(def); err != nil {
		return err
	}
	l.notify()
	return nil
}

func (l *Loader) put(def domain.Definition) error {
	if def.ID == "" {
		return fmt.Errorf("definition missing ID")
	}
	bytes, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition %s: %w", def.ID, err)
	}
	l.mu.Lock()
	l.defs[def.ID] = bytes
	l.mu.Unlock()
	return nil
}

// Remove deletes a definition and notifies watchers.
func (l *Loader) Remove(id string) {
	l.mu.Lock()
	delete(l.defs, id)
	l.mu.Unlock()
	l.notify()
}

// GetDefinition retrieves the raw definition of an automaton by ID.
func (l *Loader) GetDefinition(id string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	content, ok := l.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDefinitionNotFound, id)
	}
	return content, nil
}

// ListDefinitions returns all available definition IDs.
func (l *Loader) ListDefinitions() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(l.defs))
	for k := range l.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}

// Watch implements ports.Watchable. The channel is closed when ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, w := range l.watchers {
			if w == ch {
				l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

func (l *Loader) notify() {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, w := range l.watchers {
		// Coalesce: one pending signal is enough to trigger a reload.
		select {
		case w <- struct{}{}:
		default:
		}
	}
}
