package runner

import (
	"log/slog"

	"github.com/aretw0/automaton/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithInterceptor configures the input middleware.
func WithInterceptor(interceptor InputInterceptor) Option {
	return func(r *Runner) {
		r.Interceptor = interceptor
	}
}

// WithEngine configures the engine sessions are fed through.
func WithEngine(engine Stepper) Option {
	return func(r *Runner) {
		r.engine = engine
	}
}

// WithSession configures the session to drive. It must already be stored.
func WithSession(session *domain.Session) Option {
	return func(r *Runner) {
		r.session = session
	}
}
