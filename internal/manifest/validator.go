package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/component.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ValidationResult is the outcome of checking one manifest.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one schema violation. Path is a JSON pointer into the
// manifest ("/commands/0"), empty for the document itself.
type ValidationIssue struct {
	Path    string
	Message string
	Keyword string
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		const url = "component.schema.json"
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("reading component schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, doc); err != nil {
			compileErr = fmt.Errorf("registering component schema: %w", err)
			return
		}
		if compiledSchema, err = c.Compile(url); err != nil {
			compileErr = fmt.Errorf("compiling component schema: %w", err)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks a JSON or YAML manifest against the component schema.
// Schema violations are reported in the result; the error is reserved for
// input that cannot be parsed at all.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, err
	}

	// YAML is a superset of JSON, so one decoder covers both formats.
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	asJSON, err := json.Marshal(stringKeys(raw))
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}

	var issues issueSet
	issues.collect(ve)
	if len(issues.list) == 0 {
		issues.list = []ValidationIssue{{Message: ve.Error()}}
	}
	return &ValidationResult{Issues: issues.list}, nil
}

// ValidateFile validates the manifest at path.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

// issueSet gathers the leaf causes of a validation error, once each.
type issueSet struct {
	seen map[ValidationIssue]bool
	list []ValidationIssue
}

func (s *issueSet) collect(ve *jsonschema.ValidationError) {
	for _, cause := range ve.Causes {
		s.collect(cause)
	}
	if len(ve.Causes) > 0 || ve.ErrorKind == nil {
		return
	}

	kw := ve.ErrorKind.KeywordPath()
	if len(kw) == 0 {
		return
	}
	issue := ValidationIssue{
		Message: ve.ErrorKind.LocalizedString(printer),
		Keyword: kw[len(kw)-1],
	}
	if len(ve.InstanceLocation) > 0 {
		issue.Path = "/" + strings.Join(ve.InstanceLocation, "/")
	}

	if s.seen == nil {
		s.seen = map[ValidationIssue]bool{}
	}
	if !s.seen[issue] {
		s.seen[issue] = true
		s.list = append(s.list, issue)
	}
}

// stringKeys rewrites map[any]any nodes from the YAML decoder into
// map[string]any so the tree can be encoded as JSON.
func stringKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = stringKeys(item)
		}
		return val
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = stringKeys(item)
		}
		return m
	case []any:
		for i, item := range val {
			val[i] = stringKeys(item)
		}
		return val
	default:
		return val
	}
}
