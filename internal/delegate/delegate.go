package delegate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/conduit-cli/conduit/internal/platform"
)

// DefaultTimeout bounds a delegated call.
const DefaultTimeout = 60 * time.Second

// Target is the component being invoked.
type Target struct {
	Name       string
	EntryPoint string
}

// Delegator runs component entry points.
type Delegator struct {
	// Stdout, Stderr and Stdin default to the host's standard streams.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	runner      platform.Runner
	timeout     time.Duration
	hostVersion string
	environ     func() []string
	logger      *slog.Logger
}

// Option configures a Delegator.
type Option func(*Delegator)

// WithRunner sets the process runner.
func WithRunner(r platform.Runner) Option {
	return func(d *Delegator) { d.runner = r }
}

// WithTimeout bounds each delegated call.
func WithTimeout(t time.Duration) Option {
	return func(d *Delegator) { d.timeout = t }
}

// WithHostVersion exposes the host version to components.
func WithHostVersion(v string) Option {
	return func(d *Delegator) { d.hostVersion = v }
}

// WithEnviron sets the base environment. os.Environ is used by default.
func WithEnviron(fn func() []string) Option {
	return func(d *Delegator) { d.environ = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Delegator) { d.logger = l }
}

// New returns a Delegator.
func New(opts ...Option) *Delegator {
	d := &Delegator{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Stdin:   os.Stdin,
		runner:  platform.ExecRunner{},
		timeout: DefaultTimeout,
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default().With("component", "delegate")
	}
	return d
}

// Execute runs target's entry point in the caller's working directory with
// the rendered argv and returns its exit code. It never returns an error: a
// timeout yields 124 and a failure to start the process yields 127, with the
// cause written to Stderr.
func (d *Delegator) Execute(ctx context.Context, target Target, subcommand string, args []string, options map[string]any) int {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := platform.Command{
		Name:   target.EntryPoint,
		Args:   BuildArgv(subcommand, args, options),
		Env:    buildEnv(d.environ(), target.Name, d.hostVersion),
		Stdin:  d.Stdin,
		Stdout: d.Stdout,
		Stderr: d.Stderr,
	}

	log := d.logger.With("name", target.Name, "subcommand", subcommand)
	log.Debug("delegating", "argv", cmd.String())

	start := time.Now()
	code, err := d.runner.Run(ctx, cmd)
	switch {
	case errors.Is(err, platform.ErrTimeout):
		log.Warn("component timed out", "timeout", d.timeout)
		writeLine(d.Stderr, target.Name+": timed out after "+d.timeout.String())
		return platform.ExitTimeout
	case err != nil:
		log.Error("component failed to start", "error", err)
		writeLine(d.Stderr, target.Name+": "+err.Error())
		if code == 0 {
			code = platform.ExitSpawnError
		}
		return code
	}

	log.Info("component finished", "exit_code", code, "duration", time.Since(start))
	return code
}

func writeLine(w io.Writer, s string) {
	if w != nil {
		_, _ = io.WriteString(w, s+"\n")
	}
}
