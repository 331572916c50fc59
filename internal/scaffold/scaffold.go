package scaffold

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/conduit-cli/conduit/internal/branding"
	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/conduit-cli/conduit/internal/installer"
	"github.com/conduit-cli/conduit/internal/manifest"
)

//go:embed templates
var templateFS embed.FS

const templateRoot = "templates/component"

var (
	namePattern    = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	commandPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9:_-]*$`)
)

// ErrNotEmpty is returned when the output directory already has files.
var ErrNotEmpty = errors.New("output directory is not empty")

// Data holds the template variables.
type Data struct {
	Name           string
	Vendor         string
	PackageID      string
	Description    string
	Version        string
	MinHostVersion string
	Commands       []string
	Marker         string
	HostName       string
	BinPath        string
}

// Result holds the outcome of a generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// NewData derives the template variables for a component called name.
// vendor falls back to the branded default; commands default to "hello".
func NewData(name, vendor string, commands []string, hostVersion string) (*Data, error) {
	if !namePattern.MatchString(name) {
		return nil, fault.Validation("scaffold", fmt.Errorf("component name %q must be lowercase words separated by hyphens", name))
	}
	for _, c := range commands {
		if !commandPattern.MatchString(c) {
			return nil, fault.Validation("scaffold", fmt.Errorf("command %q must start with a letter or digit and contain only [a-z0-9:_-]", c))
		}
		if c == "list" {
			return nil, fault.Validation("scaffold", errors.New(`"list" is reserved for introspection`))
		}
	}
	if len(commands) == 0 {
		commands = []string{"hello"}
	}
	if vendor == "" {
		vendor = branding.DefaultVendor()
	}

	packageID := installer.ResolvePackageID(name, vendor)
	if err := installer.ValidatePackageName(packageID); err != nil {
		return nil, fault.Validation("scaffold", err)
	}

	minHost := "0.1.0"
	if v := strings.TrimPrefix(hostVersion, "v"); v != "" && v != "dev" {
		minHost = v
	}

	return &Data{
		Name:           name,
		Vendor:         vendor,
		PackageID:      packageID,
		Description:    fmt.Sprintf("%s component: %s", branding.DisplayName(), name),
		Version:        "0.1.0",
		MinHostVersion: minHost,
		Commands:       commands,
		Marker:         branding.ComponentMarker(),
		HostName:       branding.CLIName(),
		BinPath:        path.Join("bin", name),
	}, nil
}

// outputName maps a template file to its path under the output directory.
func outputName(tmpl string, data *Data) string {
	name := strings.TrimSuffix(tmpl, ".tmpl")
	if name == "entrypoint" {
		return filepath.FromSlash(data.BinPath)
	}
	return name
}

// Generate renders the component skeleton into outputDir.
func Generate(data *Data, outputDir string) (*Result, error) {
	entries, err := fs.ReadDir(templateFS, templateRoot)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}

	if existing, err := os.ReadDir(outputDir); err == nil && len(existing) > 0 {
		return nil, fault.Validation("scaffold", fmt.Errorf("%s: %w", outputDir, ErrNotEmpty))
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	funcs := template.FuncMap{
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
	}

	result := &Result{OutputDir: outputDir}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		raw, err := fs.ReadFile(templateFS, path.Join(templateRoot, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", entry.Name(), err)
		}
		tmpl, err := template.New(entry.Name()).Funcs(funcs).Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", entry.Name(), err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("executing template %s: %w", entry.Name(), err)
		}

		rel := outputName(entry.Name(), data)
		out := filepath.Join(outputDir, rel)
		mode := os.FileMode(0o644)
		if entry.Name() == "entrypoint.tmpl" {
			mode = 0o755
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(out), err)
		}
		if err := os.WriteFile(out, buf.Bytes(), mode); err != nil {
			return nil, fmt.Errorf("writing %s: %w", out, err)
		}
		result.Files = append(result.Files, filepath.ToSlash(rel))
	}

	res, err := manifest.ValidateFile(filepath.Join(outputDir, "component.json"))
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not validate manifest: %v", err))
	case !res.Valid:
		for _, issue := range res.Issues {
			msg := issue.Message
			if issue.Path != "" {
				msg = issue.Path + ": " + msg
			}
			result.Warnings = append(result.Warnings, msg)
		}
	}

	return result, nil
}
