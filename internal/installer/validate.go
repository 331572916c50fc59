package installer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/conduit-cli/conduit/internal/branding"
)

// MaxPackageNameLength bounds identifiers before any pattern matching.
const MaxPackageNameLength = 100

var packageNamePattern = regexp.MustCompile(`^[a-z0-9]([_.-]?[a-z0-9]+)*/[a-z0-9](([_.]|-{1,2})?[a-z0-9]+)*$`)

// Rule names reported in NameError.
const (
	RuleEmpty     = "non-empty"
	RuleLength    = "max-length"
	RuleSeparator = "single-separator"
	RuleLowercase = "lowercase"
	RuleCharset   = "charset"
	RulePattern   = "vendor-name-pattern"
)

// NameError lists every rule a package identifier violates.
type NameError struct {
	Name       string
	Violations []string
}

func (e *NameError) Error() string {
	name := e.Name
	if len(name) > 40 {
		name = name[:40] + "..."
	}
	return fmt.Sprintf("%s %q: violates %s", ErrInvalidPackageName, name, strings.Join(e.Violations, ", "))
}

func (e *NameError) Unwrap() error {
	return ErrInvalidPackageName
}

// ValidatePackageName applies the syntax gate to a vendor/name identifier.
func ValidatePackageName(id string) error {
	if id == "" {
		return &NameError{Name: id, Violations: []string{RuleEmpty}}
	}
	if len(id) > MaxPackageNameLength {
		return &NameError{Name: id, Violations: []string{RuleLength}}
	}

	var violations []string
	if strings.Count(id, "/") != 1 {
		violations = append(violations, RuleSeparator)
	}
	if strings.ToLower(id) != id {
		violations = append(violations, RuleLowercase)
	}
	for _, r := range strings.ToLower(id) {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || strings.ContainsRune("/_.-", r)) {
			violations = append(violations, RuleCharset)
			break
		}
	}
	if !packageNamePattern.MatchString(id) && len(violations) == 0 {
		violations = append(violations, RulePattern)
	}
	if len(violations) > 0 {
		return &NameError{Name: id, Violations: violations}
	}
	return nil
}

// ResolvePackageID expands a bare component name into a package identifier
// under defaultVendor with the product prefix: "deploy" becomes
// "<vendor>/conduit-deploy". Identifiers that already name a vendor are
// returned unchanged.
func ResolvePackageID(requested, defaultVendor string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" || strings.Contains(requested, "/") {
		return requested
	}
	if defaultVendor == "" {
		defaultVendor = branding.DefaultVendor()
	}
	name := requested
	if !strings.HasPrefix(name, branding.ComponentPrefix()) {
		name = branding.ComponentPrefix() + name
	}
	return defaultVendor + "/" + name
}
