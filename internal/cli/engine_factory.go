package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/automaton"
	"github.com/aretw0/automaton/internal/adapters/file"
	"github.com/aretw0/automaton/pkg/adapters/redis"
	"github.com/aretw0/automaton/pkg/observability"
	"github.com/aretw0/automaton/pkg/persistence/middleware"
	"github.com/aretw0/automaton/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// SessionsDir is where persistent sessions are kept, relative to the definitions directory.
var SessionsDir = filepath.Join(".automaton", "sessions")

// EngineOptions holds the flags shared by every command that needs an engine.
type EngineOptions struct {
	// RepoPath is the definitions directory. Empty serves the built-in catalog.
	RepoPath string
	Debug    bool
	MaxSteps int

	// Persist stores sessions outside the process (file store, or Redis when RedisURL is set).
	Persist  bool
	RedisURL string
	// SessionsPath overrides the file store location.
	SessionsPath string
	// SessionKeys seals stored sessions with AES-GCM when set (see middleware.ParseKeys).
	SessionKeys string
}

// createEngine initializes an engine with standard CLI conventions.
func createEngine(opts EngineOptions, logger *slog.Logger, extra ...automaton.Option) (*automaton.Engine, error) {
	engineOpts := []automaton.Option{
		automaton.WithLogger(logger),
		automaton.WithMaxSteps(opts.MaxSteps),
	}
	if opts.Debug {
		engineOpts = append(engineOpts, automaton.WithLifecycleHooks(observability.LogHooks(logger)))
	}

	if opts.Persist {
		store, locker, err := createStore(opts)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, automaton.WithSessionStore(store))
		if locker != nil {
			engineOpts = append(engineOpts, automaton.WithLocker(locker))
		}
	}

	engine, err := automaton.New(opts.RepoPath, append(engineOpts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// createStore picks the session store: Redis (with a distributed locker) when a
// URL is given, otherwise JSON files under the definitions directory. Either one
// is sealed when session keys are configured.
func createStore(opts EngineOptions) (ports.SessionStore, ports.DistributedLocker, error) {
	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
	)
	if opts.RedisURL != "" {
		redisOpts, err := backend.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := backend.NewClient(redisOpts)
		store, locker = redis.NewFromClient(client), redis.NewLocker(client, redis.DefaultPrefix)
	} else {
		store = file.New(sessionsPath(opts))
	}

	if opts.SessionKeys != "" {
		cfg, err := middleware.ParseKeys(opts.SessionKeys)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid session keys: %w", err)
		}
		store = middleware.NewEncryptionMiddleware(cfg)(store)
	}
	return store, locker, nil
}

func sessionsPath(opts EngineOptions) string {
	switch {
	case opts.SessionsPath != "":
		return opts.SessionsPath
	case opts.RepoPath == "":
		return SessionsDir
	default:
		return filepath.Join(opts.RepoPath, SessionsDir)
	}
}
