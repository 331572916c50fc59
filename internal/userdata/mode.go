package userdata

import (
	"os"

	"github.com/conduit-cli/conduit/internal/branding"
)

// Mode represents the operating mode of the CLI.
type Mode int

const (
	// ModeEndUser is the default: components come from the bundled, user and
	// global package roots only.
	ModeEndUser Mode = iota
	// ModePlatformTeam is for developers working on components in a checkout.
	// CONDUIT_HOME is set and $CONDUIT_HOME/components joins the search roots.
	ModePlatformTeam
)

// DetectMode returns the current operating mode.
func DetectMode() Mode {
	if os.Getenv(branding.EnvVar("HOME")) != "" {
		return ModePlatformTeam
	}
	return ModeEndUser
}

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModePlatformTeam:
		return "platform-team"
	case ModeEndUser:
		return "end-user"
	default:
		return "unknown"
	}
}
