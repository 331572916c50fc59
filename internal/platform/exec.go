package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Exit codes reported when a child never produced one of its own.
const (
	ExitTimeout    = 124
	ExitSpawnError = 127
)

var (
	// ErrTimeout is returned when a command is killed because its context expired.
	ErrTimeout = errors.New("command timed out")
	// ErrSpawn is returned when a command could not be started.
	ErrSpawn = errors.New("command could not be started")
)

// Command is a single external process invocation expressed as argv.
type Command struct {
	Name   string
	Args   []string
	Env    []string // full environment; nil inherits the host's
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the argv for logs. It is never passed to a shell.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner starts commands. Implementations must not interpret arguments
// through a shell.
type Runner interface {
	// Run executes c and blocks until it exits or ctx is done. The returned
	// code is the child's exit code; err is non-nil only when the child could
	// not be started (wrapping ErrSpawn) or was killed on timeout (ErrTimeout).
	Run(ctx context.Context, c Command) (int, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for output pipes after the child is
	// killed. Zero uses one second.
	WaitDelay time.Duration
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, c Command) (int, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = c.Env
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = time.Second
	}

	if err := cmd.Start(); err != nil {
		return ExitSpawnError, fmt.Errorf("%w: %s: %v", ErrSpawn, c.Name, err)
	}

	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return ExitTimeout, fmt.Errorf("%w: %s", ErrTimeout, c.Name)
		}
		return ExitTimeout, fmt.Errorf("%s: %w", c.Name, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return ExitSpawnError, fmt.Errorf("%w: %s: %v", ErrSpawn, c.Name, err)
	}
	return 0, nil
}
