package registry

import "time"

// Status is a component's activation state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// UnknownVersion is recorded when the installed version could not be read.
const UnknownVersion = "unknown"

// Component is one registered component. Name is the registry key on disk
// and is only carried in the entry itself when marshaled elsewhere.
type Component struct {
	Name            string    `json:"name,omitempty"`
	PackageID       string    `json:"package"`
	Version         string    `json:"version"`
	ServiceProvider string    `json:"service_provider,omitempty"`
	Description     string    `json:"description,omitempty"`
	Commands        []string  `json:"commands"`
	EntryPoint      string    `json:"entry_point,omitempty"`
	Status          Status    `json:"status"`
	InstalledAt     time.Time `json:"installed_at"`
}

// Active reports whether dispatch may delegate to the component.
func (c Component) Active() bool {
	return c.Status != StatusInactive
}

// document is the on-disk shape of the registry file.
type document struct {
	Registry map[string]Component `json:"registry"`
	Settings map[string]any       `json:"settings"`
}

func newDocument() *document {
	return &document{
		Registry: map[string]Component{},
		Settings: map[string]any{},
	}
}
