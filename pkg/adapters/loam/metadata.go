package loam

// DefinitionMetadata is the frontmatter (or whole document, for JSON/YAML files)
// of an automaton definition stored in a Loam repository.
// Structural fields stay untyped so that integer states and symbols written by hand
// (`states: [0, 1]`) survive until the compiler decodes them weakly.
type DefinitionMetadata struct {
	ID          string `json:"id" mapstructure:"id"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`

	States      any `json:"states" mapstructure:"states"`
	Alphabet    any `json:"alphabet" mapstructure:"alphabet"`
	Transitions any `json:"transitions" mapstructure:"transitions"`
	Initial     any `json:"initial" mapstructure:"initial"`
	Finals      any `json:"finals" mapstructure:"finals"`

	// Alternative spellings accepted by the compiler.
	InputSymbols any `json:"input_symbols" mapstructure:"input_symbols"`
	InitialState any `json:"initial_state" mapstructure:"initial_state"`
	FinalStates  any `json:"final_states" mapstructure:"final_states"`

	// Metadata may be nested; it is flattened with '-' separated keys.
	Metadata map[string]any `json:"metadata" mapstructure:"metadata"`
}
