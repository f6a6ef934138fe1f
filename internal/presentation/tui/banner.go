package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/automaton/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner and the version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"    _         _                        _", "#818cf8"},
		{"   /_\\  _  _| |_ ___ _ __  __ _ _ __| |_ ___ _ _", "#a78bfa"},
		{"  / _ \\| || |  _/ _ \\ '  \\/ _` | '_ \\  _/ _ \\ ' \\", "#c084fc"},
		{" /_/ \\_\\\\_,_|\\__\\___/_|_|_\\__,_|_| |_\\__\\___/_||_|", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}

// Verdict renders the verdict of res, colored green when accepted and red otherwise.
func Verdict(res *domain.Result) string {
	p := termenv.ColorProfile()
	label := strings.ToUpper(string(res.Verdict()))
	s := termenv.String(label).Bold()
	if res.Accepted {
		return s.Foreground(p.Color("#22c55e")).String()
	}
	return s.Foreground(p.Color("#ef4444")).String()
}

// State renders a state name, highlighting accepting states.
func State(name string, accepting bool) string {
	p := termenv.ColorProfile()
	s := termenv.String(name)
	if accepting {
		return s.Foreground(p.Color("#22c55e")).Underline().String()
	}
	return s.Foreground(p.Color("#818cf8")).String()
}
