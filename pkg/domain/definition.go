package domain

// Definition is the formal 5-tuple of a DFA as supplied by a definition source
// (file, literal, builder). It carries no guarantees; NewAutomaton validates it.
type Definition struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`

	// States lists the state identifiers. Order is kept for deterministic output.
	States []string `json:"states" yaml:"states" mapstructure:"states"`

	// Alphabet lists the input symbols. Each symbol must be exactly one character
	// other than U+FFFD, which stands for malformed input.
	Alphabet []string `json:"alphabet" yaml:"alphabet" mapstructure:"alphabet"`

	// Transitions maps state -> symbol -> next state.
	Transitions map[string]map[string]string `json:"transitions" yaml:"transitions" mapstructure:"transitions"`

	Initial string   `json:"initial" yaml:"initial" mapstructure:"initial"`
	Finals  []string `json:"finals" yaml:"finals" mapstructure:"finals"`

	// Metadata holds opaque annotations (source regex, grammar productions, ...).
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty" mapstructure:"metadata"`
}
