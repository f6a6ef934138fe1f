package loam

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/automaton/internal/compiler"
	"github.com/aretw0/automaton/internal/testutils"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parityMarkdown = `---
id: parity
name: Even number of ones
alphabet: ["0", "1"]
states: [even, odd]
initial: even
finals: [even]
transitions:
  even: {"0": even, "1": odd}
  odd: {"0": odd, "1": even}
---
Accepts binary strings with an even number of 1s.`

func TestLoader_Contract(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()

	docs := []core.Document{
		{ID: "parity.md", Content: parityMarkdown},
		{ID: "single.md", Content: `---
id: single
alphabet: [x]
states: [s]
initial: s
finals: [s]
transitions:
  s: {x: s}
---
`},
	}
	for _, doc := range docs {
		require.NoError(t, repo.Save(ctx, doc))
	}

	loader := New(loam.NewTypedRepository[DefinitionMetadata](repo))

	// The loader re-encodes documents, so only presence is compared.
	tests.DefinitionLoaderContractTest(t, loader, map[string][]byte{
		"parity": nil,
		"single": nil,
	})
}

func TestLoader_GetDefinition_Compiles(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, map[string]string{"parity.md": parityMarkdown})

	loader := New(loam.NewTypedRepository[DefinitionMetadata](repo))

	raw, err := loader.GetDefinition("parity")
	require.NoError(t, err)

	def, err := compiler.NewParser().Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "parity", def.ID)
	assert.Equal(t, "Even number of ones", def.Name)
	assert.Equal(t, "Accepts binary strings with an even number of 1s.", def.Description)

	a, err := domain.NewAutomaton(*def)
	require.NoError(t, err)
	assert.True(t, a.Simulate("1001").Accepted)
	assert.False(t, a.Simulate("1").Accepted)
}

func TestLoader_GetDefinition_NumericStates(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t, SerializerOptions(true)...)
	testutils.WriteFiles(t, tmpDir, map[string]string{
		"binary.yaml": `alphabet: [0, 1]
states: [0, 1]
initial_state: 0
final_states: 1
transitions:
  0: {0: 0, 1: 1}
  1: {0: 0, 1: 1}
`,
	})

	loader := New(loam.NewTypedRepository[DefinitionMetadata](repo))

	raw, err := loader.GetDefinition("binary")
	require.NoError(t, err)

	def, err := compiler.NewParser().Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "binary", def.ID)
	assert.Equal(t, []string{"0", "1"}, def.States)
	assert.Equal(t, "0", def.Initial)
	assert.Equal(t, []string{"1"}, def.Finals)

	a, err := domain.NewAutomaton(*def)
	require.NoError(t, err)
	assert.True(t, a.Simulate("0101").Accepted)
}

func TestLoader_GetDefinition_FlattensMetadata(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, map[string]string{
		"tagged.md": `---
alphabet: [a]
states: [q]
initial: q
finals: []
transitions:
  q: {a: q}
metadata:
  regex: "a*"
  source:
    author: lab
    tags: [demo, trap]
---
`,
	})

	loader := New(loam.NewTypedRepository[DefinitionMetadata](repo))

	raw, err := loader.GetDefinition("tagged")
	require.NoError(t, err)

	var decoded struct {
		Metadata map[string]string `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "a*", decoded.Metadata["regex"])
	assert.Equal(t, "lab", decoded.Metadata["source-author"])
	assert.Equal(t, "demo trap", decoded.Metadata["source-tags"])
}

func TestLoader_GetDefinition_ByMetadataID(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, map[string]string{
		"file-name.md": `---
id: custom
alphabet: [a]
states: [q]
initial: q
finals: [q]
transitions:
  q: {a: q}
---
`,
	})

	loader := New(loam.NewTypedRepository[DefinitionMetadata](repo))

	raw, err := loader.GetDefinition("custom")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"custom"`)
}

func TestLoader_GetDefinition_NotFound(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t)
	loader := New(loam.NewTypedRepository[DefinitionMetadata](repo))

	_, err := loader.GetDefinition("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDefinitionNotFound))
}

func TestLoader_ListDefinitions_NormalizesIDs(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, map[string]string{
		"explicit.md": `---
id: explicit.md
---
Explicit`,
		"binary.json": `{"id": "binary.json"}`,
		"implicit.md": `---
name: implied from filename
---
`,
		".automaton/sessions/s1.json": `{"id": "s1", "automaton_id": "binary"}`,
	})

	loader := New(loam.NewTypedRepository[DefinitionMetadata](repo))

	ids, err := loader.ListDefinitions()
	require.NoError(t, err)
	assert.Equal(t, []string{"binary", "explicit", "implicit"}, ids)
}

func TestLoader_ListDefinitions_DetectsCollisions(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, map[string]string{
		"dup.md": `---
id: dup
---
`,
		"dup.json": `{"id": "dup"}`,
	})

	loader := New(loam.NewTypedRepository[DefinitionMetadata](repo))

	_, err := loader.ListDefinitions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "dup")
}

func TestOpen_ReadOnlyRepository(t *testing.T) {
	tmpDir, _ := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, map[string]string{"parity.md": parityMarkdown})

	loader, err := Open(tmpDir)
	require.NoError(t, err)

	ids, err := loader.ListDefinitions()
	require.NoError(t, err)
	assert.Equal(t, []string{"parity"}, ids)
}

func TestOpen_IntegerMapKeys(t *testing.T) {
	tmpDir, _ := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, map[string]string{
		"binary.yaml": `alphabet: [0, 1]
states: [0, 1]
initial: 0
finals: [1]
transitions: {0: {0: 0, 1: 1}, 1: {0: 0, 1: 1}}
`,
		"flip.md": `---
alphabet: [0, 1]
states: [0, 1]
initial: 0
finals: [0]
transitions:
  0: {0: 0, 1: 1}
  1: {0: 1, 1: 0}
---
`,
	})

	loader, err := Open(tmpDir)
	require.NoError(t, err)

	ids, err := loader.ListDefinitions()
	require.NoError(t, err)
	assert.Equal(t, []string{"binary", "flip"}, ids)

	tests := []struct {
		id     string
		input  string
		accept bool
	}{
		{"binary", "0101", true},
		{"binary", "10", false},
		{"flip", "11", true},
		{"flip", "1", false},
	}
	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.input, func(t *testing.T) {
			raw, err := loader.GetDefinition(tt.id)
			require.NoError(t, err)

			def, err := compiler.NewParser().Parse(raw)
			require.NoError(t, err)
			a, err := domain.NewAutomaton(*def)
			require.NoError(t, err)
			assert.Equal(t, tt.accept, a.Simulate(tt.input).Accepted)
		})
	}
}
