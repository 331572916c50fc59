package discovery

// Source identifies which search root a component was found under.
type Source string

const (
	SourceBundled Source = "bundled"
	SourceDev     Source = "dev"
	SourceUser    Source = "user"
	SourceGlobal  Source = "global"
)

// Root is one search location. Vendored roots hold <vendor>/<name>
// package directories; flat roots hold one directory per component.
type Root struct {
	Source   Source
	Path     string
	Vendored bool
}

// Component is a runnable component found on disk.
type Component struct {
	Name        string   `json:"name"`
	PackageID   string   `json:"package_id,omitempty"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Commands    []string `json:"commands"`
	EntryPoint  string   `json:"entry_point"`
	Dir         string   `json:"dir"`
	Source      Source   `json:"source"`
	Manifest    bool     `json:"manifest"`
}
