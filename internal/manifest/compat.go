package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrHostTooOld is wrapped by CheckHostVersion when the running host does not
// satisfy a manifest's min_host_version.
var ErrHostTooOld = errors.New("host version too old")

// CheckHostVersion reports whether hostVersion satisfies min. A bare version
// ("1.4" or "v1.4.0") means ">= that version"; anything else is parsed as a
// semver constraint such as "^1.2 || ^2". Development builds ("dev" or any
// unparsable host version) always pass.
func CheckHostVersion(min, hostVersion string) error {
	min = strings.TrimSpace(min)
	if min == "" {
		return nil
	}
	host, err := semver.NewVersion(strings.TrimPrefix(hostVersion, "v"))
	if err != nil {
		return nil
	}

	expr := min
	if _, err := semver.NewVersion(strings.TrimPrefix(min, "v")); err == nil {
		expr = ">= " + strings.TrimPrefix(min, "v")
	}
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return fmt.Errorf("invalid min_host_version %q: %w", min, err)
	}
	if !c.Check(host) {
		return fmt.Errorf("%w: requires %s, running %s", ErrHostTooOld, min, hostVersion)
	}
	return nil
}
