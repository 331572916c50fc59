package installer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/conduit-cli/conduit/internal/platform"
)

// DefaultInstallTimeout bounds a single package manager call.
const DefaultInstallTimeout = 5 * time.Minute

// Result is the outcome of one package manager invocation.
type Result struct {
	Success     bool   `json:"success"`
	Output      string `json:"output"`
	ErrorOutput string `json:"error_output"`
	ExitCode    int    `json:"exit_code"`
}

// PackageManager runs global package operations.
type PackageManager interface {
	Require(ctx context.Context, packageID string, dev bool) (Result, error)
	Remove(ctx context.Context, packageID string) (Result, error)
	Update(ctx context.Context, packageID string) (Result, error)
	Show(ctx context.Context, packageID string) (Result, error)
}

// Composer drives the composer binary non-interactively.
type Composer struct {
	Binary  string
	Runner  platform.Runner
	Timeout time.Duration
}

// NewComposer returns a Composer using binary, or "composer" when empty.
func NewComposer(binary string, timeout time.Duration) *Composer {
	if binary == "" {
		binary = "composer"
	}
	if timeout <= 0 {
		timeout = DefaultInstallTimeout
	}
	return &Composer{Binary: binary, Runner: platform.ExecRunner{}, Timeout: timeout}
}

// Require runs `global require <pkg>[:dev-main]`.
func (c *Composer) Require(ctx context.Context, packageID string, dev bool) (Result, error) {
	target := packageID
	if dev {
		target += ":dev-main"
	}
	return c.run(ctx, "global", "require", target, "--no-interaction")
}

// Remove runs `global remove <pkg>`.
func (c *Composer) Remove(ctx context.Context, packageID string) (Result, error) {
	return c.run(ctx, "global", "remove", packageID, "--no-interaction")
}

// Update runs `global update <pkg>`.
func (c *Composer) Update(ctx context.Context, packageID string) (Result, error) {
	return c.run(ctx, "global", "update", packageID, "--no-interaction")
}

// Show runs `global show <pkg> --format=json`.
func (c *Composer) Show(ctx context.Context, packageID string) (Result, error) {
	return c.run(ctx, "global", "show", packageID, "--format=json", "--no-interaction")
}

func (c *Composer) run(ctx context.Context, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	code, err := c.Runner.Run(ctx, platform.Command{
		Name:   c.Binary,
		Args:   args,
		Env:    append(os.Environ(), "COMPOSER_NO_INTERACTION=1"),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	res := Result{
		Success:     err == nil && code == 0,
		Output:      stdout.String(),
		ErrorOutput: stderr.String(),
		ExitCode:    code,
	}
	return res, err
}

// parseShowVersion extracts the installed version from `show --format=json`.
func parseShowVersion(output string) string {
	var show struct {
		Versions []string `json:"versions"`
		Version  string   `json:"version"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &show); err != nil {
		return ""
	}
	if len(show.Versions) > 0 {
		return strings.TrimSpace(show.Versions[0])
	}
	return strings.TrimSpace(show.Version)
}
