package ports

import "context"

// DefinitionLoader defines how the engine retrieves automaton definitions.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type DefinitionLoader interface {
	// GetDefinition retrieves the raw definition of an automaton by ID.
	// It returns the raw bytes (which the compiler will parse) or an error
	// wrapping domain.ErrDefinitionNotFound.
	GetDefinition(id string) ([]byte, error)

	// ListDefinitions returns the IDs of all automata the source knows about.
	ListDefinitions() ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying definitions change.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
