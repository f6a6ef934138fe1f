package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/automaton/internal/compiler"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/ports"
)

// Report describes structural properties of a valid automaton that do not make
// it malformed but usually point at a modelling mistake.
type Report struct {
	AutomatonID string `json:"automaton_id"`
	// Reachable lists the states reachable from the initial state, in declaration order.
	Reachable []string `json:"reachable"`
	// Unreachable lists states no input can lead to.
	Unreachable []string `json:"unreachable,omitempty"`
	// Dead lists reachable states from which no accepting state can be reached.
	Dead []string `json:"dead,omitempty"`
	// EmptyLanguage is true when no string is accepted at all.
	EmptyLanguage bool `json:"empty_language"`
}

// Warnings renders the report as human readable findings.
func (r Report) Warnings() []string {
	var out []string
	if r.EmptyLanguage {
		out = append(out, "automaton accepts no string (empty language)")
	}
	for _, s := range r.Unreachable {
		out = append(out, fmt.Sprintf("state %q is unreachable from the initial state", s))
	}
	for _, s := range r.Dead {
		out = append(out, fmt.Sprintf("state %q cannot reach an accepting state", s))
	}
	return out
}

// Analyze crawls the transition graph of a starting at its initial state.
func Analyze(a *domain.Automaton) Report {
	g := a.Graph()

	forward := make(map[string][]string, len(g.Nodes))
	backward := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		forward[e.From] = append(forward[e.From], e.To)
		backward[e.To] = append(backward[e.To], e.From)
	}

	reachable := crawl([]string{g.Initial}, forward)
	productive := crawl(g.Finals, backward)

	report := Report{AutomatonID: a.ID(), Reachable: []string{}}
	empty := true
	for _, s := range g.Nodes {
		if !reachable[s] {
			report.Unreachable = append(report.Unreachable, s)
			continue
		}
		report.Reachable = append(report.Reachable, s)
		if !productive[s] {
			report.Dead = append(report.Dead, s)
		}
		if a.IsFinal(s) {
			empty = false
		}
	}
	report.EmptyLanguage = empty
	return report
}

func crawl(start []string, adj map[string][]string) map[string]bool {
	visited := make(map[string]bool)
	queue := append([]string(nil), start...)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, next := range adj[current] {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// ValidateDefinitions loads, parses and validates every listed definition.
// With no ids, every definition the loader lists is checked. All failures are
// reported together.
func ValidateDefinitions(loader ports.DefinitionLoader, parser *compiler.Parser, ids ...string) error {
	if len(ids) == 0 {
		var err error
		ids, err = loader.ListDefinitions()
		if err != nil {
			return fmt.Errorf("failed to list definitions: %w", err)
		}
	}

	var errors []string
	for _, id := range ids {
		raw, err := loader.GetDefinition(id)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Missing definition or load error: '%s': %v", id, err))
			continue
		}

		def, err := parser.Parse(raw)
		if err != nil {
			errors = append(errors, fmt.Sprintf("'%s': %v", id, err))
			continue
		}
		def.ID = id

		if _, err := domain.NewAutomaton(*def); err != nil {
			for _, v := range domain.Violations(err) {
				errors = append(errors, fmt.Sprintf("'%s': %s", id, v.Message))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}
