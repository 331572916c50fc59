package manifest

// FileNames lists the manifest file names, in lookup order.
var FileNames = []string{"component.json", "component.yaml", "manifest.json"}

// ComponentManifest describes a component as declared by its author.
type ComponentManifest struct {
	Name           string `yaml:"name" json:"name"`
	Description    string `yaml:"description" json:"description"`
	Version        string `yaml:"version" json:"version"`
	MinHostVersion string `yaml:"min_host_version" json:"min_host_version"`

	// Commands are published and callable as <name>:<command>.
	Commands []string `yaml:"commands" json:"commands"`
	// InternalCommands are never exposed through the host.
	InternalCommands []string `yaml:"internal_commands,omitempty" json:"internal_commands,omitempty"`

	Dependencies map[string]string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Tags         []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Author       string            `yaml:"author,omitempty" json:"author,omitempty"`
	Homepage     string            `yaml:"homepage,omitempty" json:"homepage,omitempty"`
	Repository   string            `yaml:"repository,omitempty" json:"repository,omitempty"`
	License      string            `yaml:"license,omitempty" json:"license,omitempty"`
}

// PublishedCommands returns Commands minus anything also listed as internal.
func (m *ComponentManifest) PublishedCommands() []string {
	if len(m.InternalCommands) == 0 {
		return append([]string(nil), m.Commands...)
	}
	internal := make(map[string]bool, len(m.InternalCommands))
	for _, c := range m.InternalCommands {
		internal[c] = true
	}
	var out []string
	for _, c := range m.Commands {
		if !internal[c] {
			out = append(out, c)
		}
	}
	return out
}
