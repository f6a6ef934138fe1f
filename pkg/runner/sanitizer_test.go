package runner

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	// Default Limit is 4096
	limit := 4096

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("a", tt.inputSize)
			_, err := SanitizeInput(input)
			if tt.wantErr {
				if !errors.Is(err, ErrInputTooLarge) {
					t.Errorf("SanitizeInput() expected ErrInputTooLarge for size %d, got %v", tt.inputSize, err)
				}
			} else {
				if err != nil {
					t.Errorf("SanitizeInput() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestSanitizeInput_KeepsContent(t *testing.T) {
	for _, input := range []string{"babbbabba bb", "çaé", "a\x00b", ""} {
		got, err := SanitizeInput(input)
		if err != nil {
			t.Errorf("Unexpected error for %q: %v", input, err)
		}
		if got != input {
			t.Errorf("Expected %q untouched, got %q", input, got)
		}
	}
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	if MaxInputSize() != 10 {
		t.Errorf("Expected limit 10, got %d", MaxInputSize())
	}

	// Input len 11 -> Should fail
	_, err := SanitizeInput("12345678901")
	if err == nil {
		t.Error("Expected error for input > 10 when env var is set")
	}

	// Input len 5 -> Should pass
	_, err = SanitizeInput("12345")
	if err != nil {
		t.Error("Unexpected error for valid input")
	}
}

func TestSanitizeInput_InvalidEnvIgnored(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "lots")
	if MaxInputSize() != DefaultMaxInputSize {
		t.Errorf("Expected default limit, got %d", MaxInputSize())
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	// Invalid UTF-8 sequence
	input := "\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98"
	_, err := SanitizeInput(input)
	if err != ErrInvalidUTF8 {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}
}

func TestStripControl(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "abba", "abba"},
		{"Tab Kept", "a\tb", "a\tb"},
		{"Line Ending", "abba\r\n", "abba"},
		{"ANSI Code", "\x1b[31mab\x1b[0m", "[31mab[0m"}, // ESC removed
		{"Null Byte", "a\x00b", "ab"},
		{"Bell", "ab\x07", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripControl(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
