/*
Package runner implements the interactive stepping loop for incremental sessions.

It acts as the bridge between the engine and the outside world: it reads chunks of
symbols through a pluggable IOHandler, feeds them into a session, and reports every
transition taken until the input ends or a symbol outside the alphabet halts the run.

# Key Components

  - Runner: the loop. It finishes the session on EOF, on ":done" or on a halt.
  - IOHandler: decouples the interaction mode (TextHandler, JSONHandler).
  - InputInterceptor: middleware applied to every chunk before it is fed.
  - SanitizeInput: size and UTF-8 checks for untrusted input at any boundary.

# Usage

	r := runner.NewRunner(
		runner.WithEngine(eng),
		runner.WithSession(session),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	res, err := r.Run(ctx)
*/
package runner
