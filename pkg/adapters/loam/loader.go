package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/automaton/internal/compiler"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/loam"
)

// WatchPattern selects the files that count as definition sources.
const WatchPattern = "**/*.{md,json,yaml,yml}"

// Loader adapts the Loam library to the ports.DefinitionLoader interface.
type Loader struct {
	Repo *loam.TypedRepository[DefinitionMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[DefinitionMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only, strict Loam repository at path and wraps it.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number, so state "10" and state 10 decode alike.
	opts := append([]loam.Option{
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	}, SerializerOptions(true)...)
	repo, err := loam.Init(absPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[DefinitionMetadata](repo)), nil
}

// GetDefinition retrieves a definition and re-encodes it as JSON for the compiler.
// Loam resolves "regex-1" to "regex-1.yaml"/"regex-1.md"; a definition whose
// metadata id differs from its file name is found by scanning the repository.
func (l *Loader) GetDefinition(id string) ([]byte, error) {
	ctx := context.Background()

	doc, err := l.Repo.Get(ctx, id)
	if err == nil {
		return encodeDefinition(id, buildDefinitionData(documentID(doc.ID, doc.Data), doc.Data, doc.Content))
	}

	docs, listErr := l.Repo.List(ctx)
	if listErr != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	for _, candidate := range docs {
		if !hidden(candidate.ID) && documentID(candidate.ID, candidate.Data) == id {
			return encodeDefinition(id, buildDefinitionData(id, candidate.Data, candidate.Content))
		}
	}
	return nil, fmt.Errorf("%w: %s: %v", domain.ErrDefinitionNotFound, id, err)
}

func encodeDefinition(id string, data map[string]any) ([]byte, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal definition %s: %w", id, err)
	}
	return bytes, nil
}

func buildDefinitionData(id string, meta DefinitionMetadata, content string) map[string]any {
	data := map[string]any{"id": id}

	set := func(key string, v any) {
		if v != nil {
			data[key] = compiler.NormalizeKeys(v)
		}
	}
	set("states", meta.States)
	set("alphabet", meta.Alphabet)
	set("transitions", meta.Transitions)
	set("initial", meta.Initial)
	set("finals", meta.Finals)
	set("input_symbols", meta.InputSymbols)
	set("initial_state", meta.InitialState)
	set("final_states", meta.FinalStates)

	if meta.Name != "" {
		data["name"] = meta.Name
	}

	// A markdown body doubles as the description.
	description := meta.Description
	if description == "" {
		description = strings.TrimSpace(content)
	}
	if description != "" {
		data["description"] = description
	}

	if len(meta.Metadata) > 0 {
		data["metadata"] = flattenMetadata(meta.Metadata)
	}
	return data
}

// ListDefinitions lists all definitions in the repository.
func (l *Loader) ListDefinitions() ([]string, error) {
	ctx := context.Background()
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		if hidden(doc.ID) {
			continue
		}
		id := documentID(doc.ID, doc.Data)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// hidden reports whether path lies under a dot directory (e.g. .automaton/sessions).
func hidden(path string) bool {
	for _, part := range strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' }) {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// documentID prefers the id from metadata over the file name.
func documentID(docID string, meta DefinitionMetadata) string {
	rawID := meta.ID
	if rawID == "" {
		rawID = docID
	}
	return trimExtension(rawID)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable. Every relevant file change yields one signal.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, WatchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces; a pending signal already covers this event.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}

// flattenMetadata converts a nested map into a flat map[string]string using '-'
// separated keys. Lists are joined with spaces.
func flattenMetadata(src map[string]any) map[string]string {
	res := make(map[string]string)
	var visit func(prefix string, v any)

	visit = func(prefix string, v any) {
		switch val := v.(type) {
		case map[string]any:
			for k, sub := range val {
				fullKey := k
				if prefix != "" {
					fullKey = prefix + "-" + k
				}
				visit(fullKey, sub)
			}
		case map[any]any:
			for k, sub := range val {
				strKey := fmt.Sprintf("%v", k)
				fullKey := strKey
				if prefix != "" {
					fullKey = prefix + "-" + strKey
				}
				visit(fullKey, sub)
			}
		case []any:
			var parts []string
			for _, item := range val {
				parts = append(parts, fmt.Sprintf("%v", item))
			}
			res[prefix] = strings.Join(parts, " ")
		default:
			if prefix != "" {
				res[prefix] = fmt.Sprintf("%v", val)
			}
		}
	}

	for k, v := range src {
		visit(k, v)
	}
	return res
}
