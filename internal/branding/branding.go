// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this package before building; Go's
// //go:embed bakes it into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName         string `yaml:"cli_name"`
	DisplayName     string `yaml:"display_name"`
	Description     string `yaml:"description"`
	HomeDir         string `yaml:"home_dir"`
	EnvPrefix       string `yaml:"env_prefix"`
	GoModule        string `yaml:"go_module"`
	GitHubRepo      string `yaml:"github_repo"`
	ComponentMarker string `yaml:"component_marker"`
	ComponentPrefix string `yaml:"component_prefix"`
	DefaultVendor   string `yaml:"default_vendor"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:         "conduit",
			DisplayName:     "Conduit",
			Description:     "Component-extensible developer CLI",
			HomeDir:         ".conduit",
			EnvPrefix:       "CONDUIT",
			GoModule:        "github.com/conduit-cli/conduit",
			GitHubRepo:      "conduit-cli/conduit",
			ComponentMarker: "conduit-component",
			ComponentPrefix: "conduit-",
			DefaultVendor:   "conduit-cli",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "conduit").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "Conduit").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".conduit").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "CONDUIT").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// GitHubRepo returns the "owner/repo" string of the host itself.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// ComponentMarker returns the package keyword that identifies a package as
// belonging to this CLI's component ecosystem.
func ComponentMarker() string { load(); return defaults.ComponentMarker }

// ComponentPrefix returns the conventional package-name prefix for components
// (e.g., "conduit-" in "vendor/conduit-spotify").
func ComponentPrefix() string { load(); return defaults.ComponentPrefix }

// DefaultVendor returns the vendor used when a bare component name is installed.
func DefaultVendor() string { load(); return defaults.DefaultVendor }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "CONDUIT_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
