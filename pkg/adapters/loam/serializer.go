package loam

import (
	"io"

	"github.com/aretw0/automaton/internal/compiler"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/adapters/fs"
	"github.com/aretw0/loam/pkg/core"
)

// definitionExtensions are the formats a definition can be written in.
var definitionExtensions = []string{".md", ".json", ".yaml", ".yml"}

// keyNormalizer wraps a Loam serializer so that mappings with non-string keys
// (`transitions: {0: {0: 0, 1: 1}}`) come out as map[string]any. The typed
// repository round-trips metadata through encoding/json, which rejects
// map[any]any.
type keyNormalizer struct {
	fs.Serializer
}

func (k keyNormalizer) Parse(r io.Reader, metadataKey string) (*core.Document, error) {
	doc, err := k.Serializer.Parse(r, metadataKey)
	if err != nil {
		return nil, err
	}
	if normalized, ok := compiler.NormalizeKeys(map[string]any(doc.Metadata)).(map[string]any); ok {
		doc.Metadata = core.Metadata(normalized)
	}
	return doc, nil
}

// SerializerOptions registers key-normalizing serializers for every definition
// format. Repositories read through Loader should be opened with them.
func SerializerOptions(strict bool) []loam.Option {
	defaults := fs.DefaultSerializers(strict)
	opts := make([]loam.Option, 0, len(definitionExtensions))
	for _, ext := range definitionExtensions {
		opts = append(opts, loam.WithSerializer(ext, keyNormalizer{Serializer: defaults[ext]}))
	}
	return opts
}
