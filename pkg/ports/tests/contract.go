package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/ports"
)

// DefinitionLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.DefinitionLoader.
// setupData maps every ID the loader is expected to know to its raw content.
// A nil value skips the byte comparison for that ID (useful for loaders that re-encode).
func DefinitionLoaderContractTest(t *testing.T, loader ports.DefinitionLoader, setupData map[string][]byte) {
	t.Helper()

	t.Run("GetDefinition_Success", func(t *testing.T) {
		for id, expectedContent := range setupData {
			content, err := loader.GetDefinition(id)
			if err != nil {
				t.Fatalf("unexpected error getting definition %s: %v", id, err)
			}
			if len(content) == 0 {
				t.Errorf("empty content for %s", id)
			}
			if expectedContent != nil && string(content) != string(expectedContent) {
				t.Errorf("content mismatch for %s. got %q, want %q", id, content, expectedContent)
			}
		}
	})

	t.Run("GetDefinition_NotFound", func(t *testing.T) {
		_, err := loader.GetDefinition("non-existent-automaton")
		if err == nil {
			t.Fatal("expected error for non-existent definition, got nil")
		}
		if !errors.Is(err, domain.ErrDefinitionNotFound) {
			t.Errorf("expected error wrapping domain.ErrDefinitionNotFound, got %v", err)
		}
	})

	t.Run("ListDefinitions", func(t *testing.T) {
		ids, err := loader.ListDefinitions()
		if err != nil {
			t.Fatalf("unexpected error listing definitions: %v", err)
		}

		if len(ids) != len(setupData) {
			t.Errorf("expected %d definitions, got %d", len(setupData), len(ids))
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}

		for id := range setupData {
			if !lookup[id] {
				t.Errorf("definition %s missing from list", id)
			}
		}
	})
}
