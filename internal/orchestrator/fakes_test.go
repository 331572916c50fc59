package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/conduit-cli/conduit/internal/delegate"
	"github.com/conduit-cli/conduit/internal/discovery"
	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/conduit-cli/conduit/internal/history"
	"github.com/conduit-cli/conduit/internal/installer"
	"github.com/conduit-cli/conduit/internal/registry"
	"github.com/conduit-cli/conduit/internal/updater"
)

type fakeInstaller struct {
	validateErr error
	eligibleErr error
	requireErr  error
	removeErr   error
	updateErr   error
	version     string
	calls       []string
}

func (f *fakeInstaller) Validate(pkg string) error {
	f.calls = append(f.calls, "validate "+pkg)
	if f.validateErr != nil {
		return fault.Validation("validate", f.validateErr)
	}
	return fault.Validation("validate", installer.ValidatePackageName(pkg))
}

func (f *fakeInstaller) CheckEligible(_ context.Context, pkg string, _ bool) error {
	f.calls = append(f.calls, "eligible "+pkg)
	return fault.Eligibility("eligibility", f.eligibleErr)
}

func (f *fakeInstaller) Require(_ context.Context, pkg string, _ bool) (installer.Result, error) {
	f.calls = append(f.calls, "require "+pkg)
	if f.requireErr != nil {
		return installer.Result{ExitCode: 2}, fault.Process("install", f.requireErr)
	}
	return installer.Result{Success: true}, nil
}

func (f *fakeInstaller) InstalledVersion(context.Context, string) string {
	if f.version == "" {
		return registry.UnknownVersion
	}
	return f.version
}

func (f *fakeInstaller) Remove(_ context.Context, pkg string) (installer.Result, error) {
	f.calls = append(f.calls, "remove "+pkg)
	if f.removeErr != nil {
		return installer.Result{ExitCode: 1}, fault.Process("remove", f.removeErr)
	}
	return installer.Result{Success: true}, nil
}

func (f *fakeInstaller) Update(_ context.Context, pkg string) (installer.Result, error) {
	f.calls = append(f.calls, "update "+pkg)
	if f.updateErr != nil {
		return installer.Result{ExitCode: 1}, fault.Process("update", f.updateErr)
	}
	return installer.Result{Success: true}, nil
}

func (f *fakeInstaller) ran(op string) bool {
	for _, c := range f.calls {
		if len(c) > len(op) && c[:len(op)+1] == op+" " {
			return true
		}
	}
	return false
}

type fakeDiscoverer struct {
	components []discovery.Component
	err        error
}

func (f *fakeDiscoverer) Discover(context.Context) ([]discovery.Component, error) {
	return f.components, f.err
}

func (f *fakeDiscoverer) Find(_ context.Context, name string) (discovery.Component, bool, error) {
	if f.err != nil {
		return discovery.Component{}, false, f.err
	}
	for _, c := range f.components {
		if c.Name == name {
			return c, true, nil
		}
	}
	return discovery.Component{}, false, nil
}

type fakeChecker struct {
	records []updater.UpdateRecord
	err     error
}

func (f *fakeChecker) Check(context.Context, bool) ([]updater.UpdateRecord, error) {
	return f.records, f.err
}

type execCall struct {
	target  delegate.Target
	sub     string
	args    []string
	options map[string]any
}

type fakeExecutor struct {
	code  int
	calls []execCall
}

func (f *fakeExecutor) Execute(_ context.Context, t delegate.Target, sub string, args []string, options map[string]any) int {
	f.calls = append(f.calls, execCall{target: t, sub: sub, args: args, options: options})
	return f.code
}

type memHistory struct {
	mu     sync.Mutex
	events []history.Event
}

func (m *memHistory) Send(_ context.Context, e history.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memHistory) last() history.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return history.Event{}
	}
	return m.events[len(m.events)-1]
}

// brokenRegistrar fails every write.
type brokenRegistrar struct{}

var errDiskFull = errors.New("disk full")

func (brokenRegistrar) Register(registry.Component) error       { return errDiskFull }
func (brokenRegistrar) Unregister(string) error                 { return errDiskFull }
func (brokenRegistrar) SetStatus(string, registry.Status) error { return errDiskFull }

type harness struct {
	orch      *Orchestrator
	inst      *fakeInstaller
	store     *registry.Store
	disc      *fakeDiscoverer
	checker   *fakeChecker
	exec      *fakeExecutor
	history   *memHistory
	registrar Registrar
}

func newHarness(t *testing.T, mutate ...func(*harness)) *harness {
	t.Helper()
	h := &harness{
		inst:    &fakeInstaller{},
		store:   registry.New(filepath.Join(t.TempDir(), "registry.json")),
		disc:    &fakeDiscoverer{},
		checker: &fakeChecker{},
		exec:    &fakeExecutor{},
		history: &memHistory{},
	}
	h.registrar = h.store
	for _, m := range mutate {
		m(h)
	}
	h.orch = New(Deps{
		Installer:  h.inst,
		Remover:    h.inst,
		Upgrader:   h.inst,
		Lister:     h.store,
		Registrar:  h.registrar,
		Discoverer: h.disc,
		Checker:    h.checker,
		Executor:   h.exec,
		History:    h.history,
	},
		WithDefaultVendor("acme"),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
	)
	return h
}

func (h *harness) register(t *testing.T, c registry.Component) {
	t.Helper()
	if err := h.store.Register(c); err != nil {
		t.Fatalf("seeding registry: %v", err)
	}
}

// corrupt overwrites the registry file with unparsable JSON.
func (h *harness) corrupt(t *testing.T) {
	t.Helper()
	if err := os.WriteFile(h.store.Path(), []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
}
