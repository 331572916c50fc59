package discovery

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter keeps the components matching any of terms. A term containing glob
// metacharacters is matched as a doublestar pattern against the name, the
// package id and each command; a plain term matches as a case-insensitive
// substring. No terms keeps everything.
func Filter(components []Component, terms []string) []Component {
	if len(terms) == 0 {
		return components
	}
	var out []Component
	for _, c := range components {
		if matchesAny(c, terms) {
			out = append(out, c)
		}
	}
	return out
}

func matchesAny(c Component, terms []string) bool {
	fields := append([]string{c.Name, c.PackageID}, c.Commands...)
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		glob := strings.ContainsAny(term, "*?[{")
		for _, f := range fields {
			if f == "" {
				continue
			}
			f = strings.ToLower(f)
			if glob {
				if ok, err := doublestar.Match(term, f); err == nil && ok {
					return true
				}
				continue
			}
			if strings.Contains(f, term) {
				return true
			}
		}
	}
	return false
}
