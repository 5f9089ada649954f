package api

const (
	DefaultConfigFile = "release.yaml"

	StepTypeCommand = "command"
	StepTypeIndex   = "index"

	ForEachDocuments = "documents"

	DefaultIndexTitle = "Documentation"
)

// Release is the release.yaml configuration format.
type Release struct {
	Context   map[string]any  `yaml:"context,omitempty"`
	Tools     map[string]Tool `yaml:"tools"`
	Documents []Document      `yaml:"documents,omitempty"`
	Phases    []PhaseConfig   `yaml:"phases"`
	Artifacts []string        `yaml:"artifacts,omitempty"`

	// Set by the loader, not from YAML.
	Dir      string `yaml:"-"`
	FilePath string `yaml:"-"`
}

// Tool is a named external capability. Path locates the executable
// (an interpreter or a binary), Args are prepended to every invocation.
type Tool struct {
	Path string   `yaml:"path"`
	Args []string `yaml:"args,omitempty"`
}

// Document is a (source, output) pair handled by the documentation phase.
type Document struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
}

// PhaseConfig groups steps sharing a working directory.
// Dir is relative to the project root.
type PhaseConfig struct {
	Name  string       `yaml:"name"`
	Dir   string       `yaml:"dir,omitempty"`
	Steps []StepConfig `yaml:"steps"`
}

// StepConfig defines a single step within a phase.
type StepConfig struct {
	Name         string         `yaml:"name"`
	Type         string         `yaml:"type"`
	Enabled      *bool          `yaml:"enabled,omitempty"` // default true
	AllowFailure bool           `yaml:"allowFailure,omitempty"`
	Timeout      string         `yaml:"timeout,omitempty"`
	Expect       []string       `yaml:"expect,omitempty"`
	Command      *CommandConfig `yaml:"command,omitempty"`
	Index        *IndexConfig   `yaml:"index,omitempty"`
}

// IsEnabled reports whether the step runs by default.
func (s StepConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// CommandConfig configures the command step.
type CommandConfig struct {
	Tool    string   `yaml:"tool"`
	Args    []string `yaml:"args,omitempty"`
	ForEach string   `yaml:"foreach,omitempty"`
}

// IndexConfig configures the index step.
type IndexConfig struct {
	Output   string `yaml:"output"`
	Title    string `yaml:"title,omitempty"`
	Template string `yaml:"template,omitempty"`
}
