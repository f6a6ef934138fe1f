package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/automaton/internal/logging"
	"github.com/aretw0/automaton/internal/runtime"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/ports"
)

// ErrSessionExists is returned by Start when the ID is already taken.
var ErrSessionExists = errors.New("session already exists")

// DefaultLockTTL bounds how long a distributed session lock may be held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store  ports.SessionStore
	engine *runtime.Engine

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithEngine sets the engine used to feed symbols (step ceiling, hooks).
func WithEngine(engine *runtime.Engine) Option {
	return func(m *Manager) {
		m.engine = engine
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.engine == nil {
		m.engine = runtime.NewEngine(runtime.WithLogger(m.logger))
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// NewID returns a random session identifier.
func NewID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("s-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

// Start opens a new session on a. An empty sessionID gets a random one.
func (m *Manager) Start(ctx context.Context, a *domain.Automaton, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		sessionID = NewID()
	}

	var session *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, sessionID)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrSessionExists, sessionID)
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		session = m.engine.Start(ctx, a, sessionID)
		if err := m.store.Save(ctx, sessionID, session); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return session, err
}

// LoadOrStart tries to load a session. If not found, it starts a new one on a.
func (m *Manager) LoadOrStart(ctx context.Context, a *domain.Automaton, sessionID string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		if err == nil {
			if session.AutomatonID != a.ID() {
				return fmt.Errorf("%w: session %s is bound to %q", runtime.ErrAutomatonMismatch, sessionID, session.AutomatonID)
			}
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		session = m.engine.Start(ctx, a, sessionID)
		if err := m.store.Save(ctx, sessionID, session); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return session, err
}

// Feed loads the session, advances it by symbols and persists the result.
// The whole read-modify-write runs under the session lock.
func (m *Manager) Feed(ctx context.Context, a *domain.Automaton, sessionID, symbols string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		next, err := m.engine.Feed(ctx, a, current, symbols)
		if err != nil {
			return err
		}

		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		session = next
		return nil
	})
	return session, err
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		return err
	})
	return session, err
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, session)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
