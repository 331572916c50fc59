package delegate

import (
	"strings"

	"github.com/conduit-cli/conduit/internal/branding"
)

// buildEnv returns base plus the variables that tell a component it was
// launched by the host.
func buildEnv(base []string, component, hostVersion string) []string {
	env := append([]string(nil), base...)
	env = setEnv(env, branding.EnvVar("CALLER"), "1")
	env = setEnv(env, branding.EnvVar("COMPONENT"), component)
	if hostVersion != "" {
		env = setEnv(env, branding.EnvVar("HOST_VERSION"), hostVersion)
	}
	return env
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
