package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/conduit-cli/conduit/internal/discovery"
	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/conduit-cli/conduit/internal/history"
	"github.com/conduit-cli/conduit/internal/installer"
	"github.com/conduit-cli/conduit/internal/registry"
)

// State is a step of the install and uninstall state machine.
type State string

const (
	StateRequested  State = "requested"
	StateValidating State = "validating"
	StateRejected   State = "rejected"
	StateInstalling State = "installing"
	StateFailed     State = "failed"
	StateRegistered State = "registered"
	StateRemoving   State = "removing"
	StateRemoved    State = "removed"
)

// ErrRegistryInconsistent is wrapped when the package manager changed the
// system but the registry could not be updated to match.
var ErrRegistryInconsistent = errors.New("package manager and registry disagree")

// InstallRequest describes an install invocation.
type InstallRequest struct {
	// Name is a component name ("deploy") or a package id ("acme/conduit-deploy").
	Name  string
	Force bool
	Dev   bool
}

// InstallResult reports what Install did.
type InstallResult struct {
	Component        registry.Component
	AlreadyInstalled bool
	Output           installer.Result
}

// Install validates, installs and registers a component. The registry is
// only written after the package manager succeeded.
func (o *Orchestrator) Install(ctx context.Context, req InstallRequest) (InstallResult, error) {
	packageID := installer.ResolvePackageID(req.Name, o.defaultVendor)
	c := registry.Component{Name: discovery.NameFromPackage(packageID), PackageID: packageID}
	sm := o.machine("install", c)

	sm.enter(StateValidating)
	if err := o.installer.Validate(packageID); err != nil {
		sm.enter(StateRejected, "error", err)
		o.record(ctx, history.OpInstall, c, err)
		return InstallResult{Component: c}, err
	}

	existing, ok, err := o.lister.Get(c.Name)
	if err != nil {
		err = fault.Registry("install", fmt.Errorf("reading registry before installing %s: %w", packageID, err))
		sm.enter(StateRejected, "error", err)
		o.record(ctx, history.OpInstall, c, err)
		return InstallResult{Component: c}, err
	}
	if ok && !req.Force {
		sm.log.Info("already installed", "version", existing.Version)
		return InstallResult{Component: existing, AlreadyInstalled: true}, nil
	}

	if err := o.installer.CheckEligible(ctx, packageID, req.Dev); err != nil {
		sm.enter(StateRejected, "error", err)
		o.record(ctx, history.OpInstall, c, err)
		return InstallResult{Component: c}, err
	}

	sm.enter(StateInstalling)
	res, err := o.installer.Require(ctx, packageID, req.Dev)
	if err != nil {
		sm.enter(StateFailed, "error", err, "exit_code", res.ExitCode)
		o.record(ctx, history.OpInstall, c, err)
		return InstallResult{Component: c, Output: res}, err
	}

	c.Version = o.installer.InstalledVersion(ctx, packageID)
	o.fillFromDiscovery(ctx, &c)

	if err := o.registrar.Register(c); err != nil {
		err = fault.Registry("install", fmt.Errorf("%w: %s was installed but could not be registered: %v",
			ErrRegistryInconsistent, packageID, err))
		sm.enter(StateFailed, "error", err)
		o.record(ctx, history.OpInstall, c, err)
		return InstallResult{Component: c, Output: res}, err
	}

	sm.enter(StateRegistered, "version", c.Version)
	o.record(ctx, history.OpInstall, c, nil)
	if stored, ok, _ := o.lister.Get(c.Name); ok {
		c = stored
	}
	return InstallResult{Component: c, Output: res}, nil
}

// UninstallResult reports what Uninstall did.
type UninstallResult struct {
	Component      registry.Component
	AlreadyAbsent  bool
	PackageRemoved bool
	Output         installer.Result
}

// Uninstall removes a component's package and its registry entry. An
// unregistered component is reported as already absent unless force is set,
// in which case the package manager removal runs anyway. With force, a
// failing package manager does not keep the registry entry.
func (o *Orchestrator) Uninstall(ctx context.Context, name string, force bool) (UninstallResult, error) {
	c, registered, err := o.resolveForRemoval(name)
	sm := o.machine("uninstall", c)

	sm.enter(StateValidating)
	if err != nil {
		err = fault.Registry("uninstall", fmt.Errorf("reading registry before removing %s: %w", c.PackageID, err))
		sm.enter(StateRejected, "error", err)
		o.record(ctx, history.OpUninstall, c, err)
		return UninstallResult{Component: c}, err
	}
	if !registered && !force {
		sm.log.Info("not installed")
		return UninstallResult{Component: c, AlreadyAbsent: true}, nil
	}
	if err := o.installer.Validate(c.PackageID); err != nil {
		sm.enter(StateRejected, "error", err)
		o.record(ctx, history.OpUninstall, c, err)
		return UninstallResult{Component: c}, err
	}

	sm.enter(StateRemoving)
	res, err := o.remover.Remove(ctx, c.PackageID)
	if err != nil && !force {
		sm.enter(StateFailed, "error", err, "exit_code", res.ExitCode)
		o.record(ctx, history.OpUninstall, c, err)
		return UninstallResult{Component: c, Output: res}, err
	}
	if err != nil {
		sm.log.Warn("package removal failed, unregistering anyway", "error", err)
	}

	if registered {
		if uerr := o.registrar.Unregister(c.Name); uerr != nil {
			uerr = fault.Registry("uninstall", fmt.Errorf("%w: %s was removed but is still registered: %v",
				ErrRegistryInconsistent, c.PackageID, uerr))
			sm.enter(StateFailed, "error", uerr)
			o.record(ctx, history.OpUninstall, c, uerr)
			return UninstallResult{Component: c, PackageRemoved: err == nil, Output: res}, uerr
		}
	}

	sm.enter(StateRemoved)
	o.record(ctx, history.OpUninstall, c, nil)
	return UninstallResult{Component: c, PackageRemoved: err == nil, Output: res}, nil
}

// resolveForRemoval maps a name or package id to a component, preferring the
// registry entry when one exists. An unreadable registry is an error, never
// "not registered".
func (o *Orchestrator) resolveForRemoval(name string) (registry.Component, bool, error) {
	lookup := name
	if strings.Contains(name, "/") {
		lookup = discovery.NameFromPackage(name)
	}
	fallback := registry.Component{Name: lookup, PackageID: installer.ResolvePackageID(name, o.defaultVendor)}
	c, ok, err := o.lister.Get(lookup)
	if err != nil {
		return fallback, false, err
	}
	if ok {
		return c, true, nil
	}
	return fallback, false, nil
}

// fillFromDiscovery copies commands, description and entry point of a freshly
// installed package when discovery can see it.
func (o *Orchestrator) fillFromDiscovery(ctx context.Context, c *registry.Component) {
	if o.discoverer == nil {
		return
	}
	found, ok, err := o.discoverer.Find(ctx, c.Name)
	if err != nil || !ok {
		o.logger.Debug("installed component not discoverable yet", "name", c.Name, "error", err)
		return
	}
	c.Commands = found.Commands
	c.Description = found.Description
	c.EntryPoint = found.EntryPoint
	if c.Version == registry.UnknownVersion && found.Version != "" {
		c.Version = found.Version
	}
}
