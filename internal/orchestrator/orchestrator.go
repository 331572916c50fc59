// Package orchestrator composes the lifecycle engine: the installer gates,
// the registry, discovery, the update checker and the delegator. Each
// collaborator is held as an explicit single-purpose interface.
package orchestrator

import (
	"context"
	"log/slog"
	"os/exec"
	"time"

	"github.com/conduit-cli/conduit/internal/delegate"
	"github.com/conduit-cli/conduit/internal/discovery"
	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/conduit-cli/conduit/internal/history"
	"github.com/conduit-cli/conduit/internal/installer"
	"github.com/conduit-cli/conduit/internal/metrics"
	"github.com/conduit-cli/conduit/internal/registry"
	"github.com/conduit-cli/conduit/internal/updater"
)

// Installer gates and installs packages.
type Installer interface {
	Validate(packageID string) error
	CheckEligible(ctx context.Context, packageID string, dev bool) error
	Require(ctx context.Context, packageID string, dev bool) (installer.Result, error)
	InstalledVersion(ctx context.Context, packageID string) string
}

// Remover removes installed packages.
type Remover interface {
	Remove(ctx context.Context, packageID string) (installer.Result, error)
}

// Upgrader applies a package update.
type Upgrader interface {
	Update(ctx context.Context, packageID string) (installer.Result, error)
}

// Lister reads the registry.
type Lister interface {
	Get(name string) (registry.Component, bool, error)
	List() ([]registry.Component, error)
}

// Registrar writes the registry.
type Registrar interface {
	Register(c registry.Component) error
	Unregister(name string) error
	SetStatus(name string, status registry.Status) error
}

// Discoverer finds components on disk.
type Discoverer interface {
	Discover(ctx context.Context) ([]discovery.Component, error)
	Find(ctx context.Context, name string) (discovery.Component, bool, error)
}

// Checker reports pending upstream updates.
type Checker interface {
	Check(ctx context.Context, force bool) ([]updater.UpdateRecord, error)
}

// Executor delegates a subcommand to a component process.
type Executor interface {
	Execute(ctx context.Context, target delegate.Target, subcommand string, args []string, options map[string]any) int
}

// Deps are the collaborators an Orchestrator is built from.
type Deps struct {
	Installer  Installer
	Remover    Remover
	Upgrader   Upgrader
	Lister     Lister
	Registrar  Registrar
	Discoverer Discoverer
	Checker    Checker
	Executor   Executor
	History    history.Sink
}

// Orchestrator runs the operations exposed by the CLI.
type Orchestrator struct {
	installer  Installer
	remover    Remover
	upgrader   Upgrader
	lister     Lister
	registrar  Registrar
	discoverer Discoverer
	checker    Checker
	executor   Executor
	history    history.Sink

	defaultVendor string
	pmBinary      string
	lookPath      func(string) (string, error)
	now           func() time.Time
	logger        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDefaultVendor sets the vendor used to expand bare component names.
func WithDefaultVendor(v string) Option {
	return func(o *Orchestrator) { o.defaultVendor = v }
}

// WithPackageManager sets the package manager binary probed by Doctor.
func WithPackageManager(binary string) Option {
	return func(o *Orchestrator) { o.pmBinary = binary }
}

// WithLookPath replaces exec.LookPath for Doctor.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(o *Orchestrator) { o.lookPath = fn }
}

// WithClock sets the time source for history events.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New returns an Orchestrator. A nil History discards events.
func New(deps Deps, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		installer:  deps.Installer,
		remover:    deps.Remover,
		upgrader:   deps.Upgrader,
		lister:     deps.Lister,
		registrar:  deps.Registrar,
		discoverer: deps.Discoverer,
		checker:    deps.Checker,
		executor:   deps.Executor,
		history:    deps.History,
		pmBinary:   "composer",
		lookPath:   exec.LookPath,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.history == nil {
		o.history = history.Nop{}
	}
	if o.logger == nil {
		o.logger = slog.Default().With("component", "orchestrator")
	}
	return o
}

// record stores a lifecycle event and counts it. Failures to store are
// logged only.
func (o *Orchestrator) record(ctx context.Context, op history.Op, c registry.Component, err error) {
	e := history.Event{
		OccurredAt: o.now().UTC(),
		Op:         op,
		Component:  c.Name,
		PackageID:  c.PackageID,
		Version:    c.Version,
		Outcome:    history.OutcomeSuccess,
	}
	if err != nil {
		e.Outcome = history.OutcomeFailed
		cat := fault.CategoryOf(err)
		if cat == fault.CategoryValidation || cat == fault.CategoryEligibility || cat == fault.CategoryNetwork {
			e.Outcome = history.OutcomeRejected
		}
		e.Category = string(cat)
		e.Message = err.Error()
	}
	if serr := o.history.Send(ctx, e); serr != nil {
		o.logger.Warn("recording history failed", "op", op, "error", serr)
	}
	metrics.IncLifecycle(string(op), string(e.Outcome))
}
