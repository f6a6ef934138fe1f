/*
Package ports defines the driven ports (interfaces) for the automaton engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various definition sources and session storage backends.

# Key Interfaces

  - DefinitionLoader: Retrieves raw automaton definitions (e.g., from Loam, Memory or the built-in catalog).
  - SessionStore: Persists and loads incremental simulation Sessions.
  - DistributedLocker: Provides distributed locking for concurrent session access.
  - Simulator: The host engine as seen by the adapters (HTTP, MCP).
*/
package ports
