package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ErrNoManifest is returned by Load when a directory has no manifest file.
var ErrNoManifest = errors.New("no component manifest")

// Find returns the path of the first manifest present in dir.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// Parse reads a manifest file without validating it. JSON manifests are
// decoded by the YAML parser, which accepts them as-is.
func Parse(path string) (*ComponentManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return parseBytes(data, path)
}

// Load finds, validates and parses the manifest in dir. It returns
// ErrNoManifest when none exists and a *SchemaError when the manifest does
// not conform to the schema.
func Load(dir string) (*ComponentManifest, error) {
	path, ok := Find(dir)
	if !ok {
		return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	if !result.Valid {
		return nil, &SchemaError{Path: path, Issues: result.Issues}
	}
	return parseBytes(data, path)
}

// SchemaError reports every schema violation found in one manifest.
type SchemaError struct {
	Path   string
	Issues []ValidationIssue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path != "" {
			parts = append(parts, issue.Path+": "+issue.Message)
		} else {
			parts = append(parts, issue.Message)
		}
	}
	return fmt.Sprintf("invalid manifest %s: %s", e.Path, strings.Join(parts, "; "))
}

func parseBytes(data []byte, path string) (*ComponentManifest, error) {
	var m ComponentManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
