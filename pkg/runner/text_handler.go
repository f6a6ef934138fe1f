package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/automaton/pkg/domain"
)

// ContentRenderer is a function that transforms markdown before it is printed.
// This allows for TUI rendering (markdown to ANSI) without coupling this package to it.
type ContentRenderer func(string) (string, error)

// ReportFunc formats a finished run as markdown.
type ReportFunc func(*domain.Result) string

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	Report   ReportFunc
	// StateStyle decorates state names (e.g. color accepting states).
	StateStyle func(state string, accepting bool) string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the markdown renderer used for reports.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerReport configures how the final Result is formatted.
func WithTextHandlerReport(report ReportFunc) TextHandlerOption {
	return func(h *TextHandler) {
		h.Report = report
	}
}

// WithTextHandlerStateStyle configures how state names are printed.
func WithTextHandlerStateStyle(style func(string, bool) string) TextHandlerOption {
	return func(h *TextHandler) {
		h.StateStyle = style
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so that Input can honor cancellation.
func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')

		// If we got text (even with EOF), send it
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}

		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

func (h *TextHandler) state(name string, accepting bool) string {
	if h.StateStyle != nil {
		return h.StateStyle(name, accepting)
	}
	if accepting {
		return name + " (accepting)"
	}
	return name
}

func (h *TextHandler) Output(ctx context.Context, update Update) error {
	if update.Result != nil {
		return h.outputResult(update.Result)
	}

	s := update.Session
	for _, step := range update.Steps {
		fmt.Fprintf(h.Writer, "  %s --%s--> %s\n", step.From, step.Symbol, step.To)
	}
	if s == nil {
		return nil
	}
	if s.Rejected != nil {
		fmt.Fprintf(h.Writer, "halted: symbol %q at index %d is not in the alphabet\n", s.Rejected.Symbol, s.Rejected.Index)
		return nil
	}
	fmt.Fprintf(h.Writer, "state: %s\n", h.state(s.CurrentState, s.Accepting))
	return nil
}

func (h *TextHandler) outputResult(res *domain.Result) error {
	if h.Report == nil {
		fmt.Fprintf(h.Writer, "%s: %q ended in %s after %d steps\n", res.Verdict(), res.Input, res.FinalState, len(res.Trace))
		return nil
	}

	output := h.Report(res)
	if h.Renderer != nil {
		if rendered, err := h.Renderer(output); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(h.Writer, strings.TrimSpace(output))
	return nil
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	// Ensure the pump is running
	h.initPump()

	// Only show prompt if context is not yet done
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		fmt.Fprint(h.Writer, "> ")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return StripControl(res.text), nil
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return nil
}
