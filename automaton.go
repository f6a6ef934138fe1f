package automaton

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/automaton/internal/logging"
	"github.com/aretw0/automaton/internal/runtime"
	"github.com/aretw0/automaton/internal/validator"
	loamAdapter "github.com/aretw0/automaton/pkg/adapters/loam"
	"github.com/aretw0/automaton/pkg/adapters/memory"
	"github.com/aretw0/automaton/pkg/catalog"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/ports"
	"github.com/aretw0/automaton/pkg/registry"
	"github.com/aretw0/automaton/pkg/session"
)

// Version is the release of this module.
//
//go:embed VERSION
var Version string

// Engine is the high-level entry point for the automaton library.
// It resolves automata by ID through a DefinitionLoader, caches the validated
// automata and hosts simulations and incremental sessions.
type Engine struct {
	runtime  *runtime.Engine
	loader   ports.DefinitionLoader
	registry *registry.Registry
	sessions *session.Manager

	store    ports.SessionStore
	locker   ports.DistributedLocker
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxSteps int
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom DefinitionLoader, bypassing the default Loam initialization.
func WithLoader(l ports.DefinitionLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxSteps bounds the number of symbols a run or a session may consume.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithSessionStore sets where incremental sessions are persisted (default: in memory).
func WithSessionStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// New initializes a new Engine.
// A non-empty repoPath is read as a Loam repository of definitions; an empty one
// serves the built-in catalog. If WithLoader is provided, repoPath is only a label.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if repoPath == "" {
			eng.Name = "catalog"
			eng.loader = catalog.Loader()
		} else {
			absPath, err := filepath.Abs(repoPath)
			if err != nil {
				return nil, fmt.Errorf("invalid path: %w", err)
			}
			eng.Name = filepath.Base(absPath)

			loader, err := loamAdapter.Open(absPath)
			if err != nil {
				return nil, err
			}
			eng.loader = loader
		}
	} else if repoPath != "" {
		eng.Name = filepath.Base(repoPath)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("automata", eng.Name)
	}

	eng.runtime = runtime.NewEngine(
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithMaxSteps(eng.maxSteps),
	)
	eng.registry = registry.NewRegistry(eng.loader)

	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	managerOpts := []session.Option{
		session.WithEngine(eng.runtime),
		session.WithLogger(eng.logger),
	}
	if eng.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, managerOpts...)

	return eng, nil
}

// List returns the IDs of every available automaton, sorted.
func (e *Engine) List() ([]string, error) {
	ids, err := e.registry.IDs()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// Definition returns the raw (unvalidated) definition of id.
func (e *Engine) Definition(id string) (*domain.Definition, error) {
	return e.registry.Definition(id)
}

// Automaton returns the validated automaton for id. It is built once and cached
// until the loader reports a change (see Watch).
func (e *Engine) Automaton(id string) (*domain.Automaton, error) {
	return e.registry.Get(id)
}

// Simulate runs input through the automaton id.
func (e *Engine) Simulate(ctx context.Context, id, input string) (*domain.Result, error) {
	a, err := e.Automaton(id)
	if err != nil {
		return nil, err
	}
	return e.runtime.Simulate(ctx, a, input)
}

// SimulateBatch runs every input through the automaton id with at most workers
// runs in flight. Results follow the order of inputs.
func (e *Engine) SimulateBatch(ctx context.Context, id string, inputs []string, workers int) ([]*domain.Result, error) {
	a, err := e.Automaton(id)
	if err != nil {
		return nil, err
	}
	return e.runtime.SimulateBatch(ctx, a, inputs, workers)
}

// Analyze reports unreachable and dead states of the automaton id.
func (e *Engine) Analyze(id string) (validator.Report, error) {
	a, err := e.Automaton(id)
	if err != nil {
		return validator.Report{}, err
	}
	return validator.Analyze(a), nil
}

// Start opens an incremental session on the automaton id.
// An empty sessionID gets a random one.
func (e *Engine) Start(ctx context.Context, id, sessionID string) (*domain.Session, error) {
	a, err := e.Automaton(id)
	if err != nil {
		return nil, err
	}
	return e.sessions.Start(ctx, a, sessionID)
}

// Feed advances a stored session by symbols.
func (e *Engine) Feed(ctx context.Context, sessionID, symbols string) (*domain.Session, error) {
	a, err := e.sessionAutomaton(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.sessions.Feed(ctx, a, sessionID, symbols)
}

// Finish reports the Result of a stored session as if its input had been run at once.
func (e *Engine) Finish(ctx context.Context, sessionID string) (*domain.Result, error) {
	s, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	a, err := e.Automaton(s.AutomatonID)
	if err != nil {
		return nil, err
	}
	return e.runtime.Finish(ctx, a, s), nil
}

func (e *Engine) sessionAutomaton(ctx context.Context, sessionID string) (*domain.Automaton, error) {
	s, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.Automaton(s.AutomatonID)
}

// Session loads a stored session.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.sessions.Load(ctx, sessionID)
}

// Sessions lists the stored session IDs.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// DeleteSession removes a stored session.
func (e *Engine) DeleteSession(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// SessionManager exposes the session manager, for hosts that drive sessions directly.
func (e *Engine) SessionManager() *session.Manager {
	return e.sessions
}

// Watch returns a channel that signals when the underlying definitions change.
// Cached automata are dropped before each signal is delivered.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, ok := e.loader.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("current loader does not support watching")
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range changes {
			e.registry.Invalidate()
			e.logger.Info("definitions changed, cache cleared")
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}

// Loader returns the underlying DefinitionLoader used by the engine.
func (e *Engine) Loader() ports.DefinitionLoader {
	return e.loader
}

// MaxSteps returns the configured step ceiling (0 = unlimited).
func (e *Engine) MaxSteps() int {
	return e.runtime.MaxSteps()
}

// Validate checks def and builds the immutable Automaton it describes.
// Failures match domain.ErrMalformedAutomaton and list every violation.
func Validate(def domain.Definition) (*domain.Automaton, error) {
	return domain.NewAutomaton(def)
}

// Simulate runs input through a. It never fails: a symbol outside the alphabet
// halts the run and is reported in Result.Rejected.
func Simulate(a *domain.Automaton, input string) *domain.Result {
	return a.Simulate(input)
}

// TraceAsGraph returns the graph of the automaton that produced r, with the path
// the run took highlighted.
func TraceAsGraph(r *domain.Result) domain.Graph {
	return domain.TraceAsGraph(r)
}

// VersionString returns Version without surrounding whitespace.
func VersionString() string {
	return strings.TrimSpace(Version)
}
