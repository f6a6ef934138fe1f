package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInputDiscarded is returned by an interceptor that drops a chunk of input.
// The runner reports it and asks for the next chunk.
var ErrInputDiscarded = errors.New("input discarded")

// InputInterceptor is a middleware that can inspect, rewrite or drop a chunk of
// input before it is fed to the session.
type InputInterceptor func(ctx context.Context, input string) (string, error)

// MultiInterceptor chains multiple interceptors. Each one sees the output of the previous.
func MultiInterceptor(interceptors ...InputInterceptor) InputInterceptor {
	return func(ctx context.Context, input string) (string, error) {
		for _, interceptor := range interceptors {
			var err error
			input, err = interceptor(ctx, input)
			if err != nil {
				return "", err
			}
		}
		return input, nil
	}
}

// SanitizeMiddleware enforces SanitizeInput on every chunk.
func SanitizeMiddleware() InputInterceptor {
	return func(_ context.Context, input string) (string, error) {
		return SanitizeInput(input)
	}
}

// ConfirmationMiddleware asks the user before feeding a chunk that contains a
// symbol the automaton does not recognize, since such a symbol halts the session.
// Answering anything but y/yes discards the chunk.
func ConfirmationMiddleware(handler IOHandler, recognizes func(rune) bool) InputInterceptor {
	return func(ctx context.Context, input string) (string, error) {
		var unknown []string
		seen := make(map[rune]bool)
		for _, r := range input {
			if !recognizes(r) && !seen[r] {
				seen[r] = true
				unknown = append(unknown, fmt.Sprintf("%q", string(r)))
			}
		}
		if len(unknown) == 0 {
			return input, nil
		}

		msg := fmt.Sprintf("%s not in the alphabet; the session will halt at the first one. Feed anyway? [y/N]",
			strings.Join(unknown, ", "))
		if err := handler.SystemOutput(ctx, msg); err != nil {
			return "", err
		}

		answer, err := handler.Input(ctx)
		if err != nil {
			return "", err
		}

		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer == "y" || answer == "yes" {
			return input, nil
		}
		return "", ErrInputDiscarded
	}
}

// AutoApproveMiddleware passes every chunk through.
func AutoApproveMiddleware() InputInterceptor {
	return func(_ context.Context, input string) (string, error) {
		return input, nil
	}
}
