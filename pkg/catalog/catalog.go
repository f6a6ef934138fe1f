// Package catalog ships the built-in automata: two DFAs recognizing the
// languages of a pair of regular expressions over {a,b} and {0,1}.
//
// The catalog is a Definition Source like any other: Loader exposes it through
// ports.DefinitionLoader, so hosts can serve it without a definitions directory.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/automaton/pkg/adapters/memory"
	"github.com/aretw0/automaton/pkg/domain"
)

// Metadata keys set on catalog definitions.
const (
	MetaRegex   = "regex"
	MetaGrammar = "grammar"
)

const (
	RegexAB     = "regex-1"
	RegexBinary = "regex-2"
)

// Definitions returns fresh copies of every built-in definition, ordered by ID.
func Definitions() []domain.Definition {
	defs := []domain.Definition{regexAB(), regexBinary()}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Get returns the built-in definition with the given ID.
func Get(id string) (domain.Definition, bool) {
	for _, d := range Definitions() {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Definition{}, false
}

// IDs lists the built-in definition IDs.
func IDs() []string {
	defs := Definitions()
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	return ids
}

// Loader returns a DefinitionLoader serving the catalog.
func Loader() *memory.Loader {
	l, err := memory.NewFromDefinitions(Definitions()...)
	if err != nil {
		// Built-in definitions always carry an ID and marshal cleanly.
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return l
}

// Productions splits the grammar metadata of def into one production per line.
func Productions(def domain.Definition) []string {
	g := def.Metadata[MetaGrammar]
	if g == "" {
		return nil
	}
	return strings.Split(g, "\n")
}

func numbered(n int) []string {
	states := make([]string, n)
	for i := range states {
		states[i] = fmt.Sprint(i)
	}
	return states
}

// table expands rows of successor states, one column per alphabet symbol.
func table(alphabet []string, rows [][]int) map[string]map[string]string {
	t := make(map[string]map[string]string, len(rows))
	for from, row := range rows {
		m := make(map[string]string, len(alphabet))
		for i, sym := range alphabet {
			m[sym] = fmt.Sprint(row[i])
		}
		t[fmt.Sprint(from)] = m
	}
	return t
}

func regexAB() domain.Definition {
	alphabet := []string{"a", "b"}
	return domain.Definition{
		ID:          RegexAB,
		Name:        "DFA over {a, b}",
		Description: "Accepts the language of (bab+bbb)b*a*(a*+b*)(ab)*(aba)(bab+aba)*bb(a+b)*(bab+aba)(a+b)*.",
		States:      numbered(23),
		Alphabet:    alphabet,
		Transitions: table(alphabet, [][]int{
			{1, 2}, {1, 1}, {3, 3}, {1, 4}, {5, 4}, {5, 6}, {7, 8}, {12, 11},
			{9, 8}, {1, 10}, {7, 1}, {7, 16}, {1, 13}, {14, 1}, {12, 15}, {17, 16},
			{20, 18}, {1, 14}, {19, 18}, {20, 22}, {20, 21}, {22, 18}, {22, 22},
		}),
		Initial: "0",
		Finals:  []string{"22"},
		Metadata: map[string]string{
			MetaRegex: "(bab+bbb)b*a*(a*+b*)(ab)*(aba)(bab+aba)*bb(a+b)*(bab+aba)(a+b)*",
			MetaGrammar: strings.Join([]string{
				"S → ABCDEFBGB",
				"A → bab | bbb",
				"B → bB | aB | λ",
				"C → abC | λ",
				"D → aba",
				"E → babE | abaE | λ",
				"F → bb",
				"G → bab | aba",
			}, "\n"),
		},
	}
}

func regexBinary() domain.Definition {
	alphabet := []string{"0", "1"}
	return domain.Definition{
		ID:          RegexBinary,
		Name:        "DFA over {0, 1}",
		Description: "Accepts the language of (1+0)*0*1*(111+00+101)(1+0)*(101+01+000)(1+0)*(101+000)*.",
		States:      numbered(9),
		Alphabet:    alphabet,
		Transitions: table(alphabet, [][]int{
			{1, 6}, {2, 6}, {3, 2}, {4, 5}, {5, 5}, {5, 5}, {7, 8}, {2, 2}, {7, 2},
		}),
		Initial: "0",
		Finals:  []string{"5"},
		Metadata: map[string]string{
			MetaRegex: "(1+0)*0*1*(111+00+101)(1+0)*(101+01+000)(1+0)*(101+000)*",
			MetaGrammar: strings.Join([]string{
				"S → ABCDAEAF",
				"A → 0A | 1A | λ",
				"B → 0B | λ",
				"C → 1C | λ",
				"D → 111 | 00 | 101",
				"E → 101 | 01 | 000",
				"F → 101F | 001F | λ",
			}, "\n"),
		},
	}
}
