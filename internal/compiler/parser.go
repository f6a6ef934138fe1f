package compiler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aretw0/automaton/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// keyAliases maps alternative spellings found in the wild (e.g. the automata-lib
// naming) onto the canonical Definition keys.
var keyAliases = map[string]string{
	"input_symbols": "alphabet",
	"symbols":       "alphabet",
	"initial_state": "initial",
	"start":         "initial",
	"final_states":  "finals",
	"accepting":     "finals",
}

// Parser is responsible for converting raw bytes into a Definition.
type Parser struct {
	strict bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLenientKeys makes the parser ignore unknown top-level keys instead of failing.
func WithLenientKeys() ParserOption {
	return func(p *Parser) {
		p.strict = false
	}
}

// NewParser creates a new parser instance.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{strict: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes YAML or JSON content into a Definition.
// Scalars are weakly typed, so `states: [0, 1]` and integer map keys are accepted.
// The result is not validated; use domain.NewAutomaton for that.
func (p *Parser) Parse(data []byte) (*domain.Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("failed to parse definition: empty document")
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}

	m, ok := NormalizeKeys(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to parse definition: expected a mapping, got %T", raw)
	}
	return p.Decode(m)
}

// Decode converts an already parsed document into a Definition.
func (p *Parser) Decode(m map[string]any) (*domain.Definition, error) {
	canonical := make(map[string]any, len(m))
	for k, v := range m {
		key := strings.ToLower(k)
		if alias, ok := keyAliases[key]; ok {
			key = alias
		}
		if _, dup := canonical[key]; dup {
			return nil, fmt.Errorf("failed to decode definition: key %q given more than once", key)
		}
		canonical[key] = v
	}

	// A single accepting state may be given as a scalar.
	if f, ok := canonical["finals"]; ok {
		if _, isSlice := f.([]any); !isSlice && f != nil {
			canonical["finals"] = []any{f}
		}
	}

	var def domain.Definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &def,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      p.strict,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(canonical); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}
	return &def, nil
}

// NormalizeKeys converts every nested map[any]any into map[string]any so the
// value can be handed to mapstructure or encoding/json.
func NormalizeKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = NormalizeKeys(sub)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[fmt.Sprintf("%v", k)] = NormalizeKeys(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = NormalizeKeys(sub)
		}
		return out
	default:
		return v
	}
}
