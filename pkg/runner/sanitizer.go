package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "AUTOMATON_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput enforces the size limit and validates UTF-8.
// The content is returned untouched: every rune, control characters included,
// is a symbol the automaton must see.
func SanitizeInput(input string) (string, error) {
	limit := MaxInputSize()
	if len(input) > limit {
		// Rejected rather than truncated, so a run never sees a prefix of what was sent.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	return input, nil
}

// StripControl removes control characters (ANSI escapes, NULL, BEL, line endings)
// from a line typed in a terminal. Tabs are kept.
func StripControl(input string) string {
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && r != '\t' {
			clean = false
			break
		}
	}
	if clean {
		return input
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaxInputSize returns the input size limit in bytes, honoring EnvMaxInputSize.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
