package orchestrator

import (
	"context"
	"fmt"

	"github.com/conduit-cli/conduit/internal/discovery"
	"github.com/conduit-cli/conduit/internal/platform"
)

// Check is one doctor finding.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// DoctorReport is the outcome of Doctor.
type DoctorReport struct {
	Checks []Check `json:"checks"`
}

// Healthy reports whether every check passed.
func (r DoctorReport) Healthy() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

func (r *DoctorReport) add(name string, ok bool, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, OK: ok, Detail: fmt.Sprintf(format, args...)})
}

// Doctor looks for inconsistencies between the registry, the package
// manager and what is on disk: registered components whose entry point no
// longer resolves and global packages that are installed but unregistered.
func (o *Orchestrator) Doctor(ctx context.Context) DoctorReport {
	var report DoctorReport

	if path, err := o.lookPath(o.pmBinary); err != nil {
		report.add("package manager", false, "%s not found on PATH", o.pmBinary)
	} else {
		report.add("package manager", true, "%s", path)
	}

	registered, err := o.lister.List()
	if err != nil {
		report.add("registry", false, "%v", err)
	} else {
		report.add("registry", true, "%d component(s) registered", len(registered))
	}

	found, derr := o.discoverer.Discover(ctx)
	if derr != nil {
		report.add("discovery", false, "%v", derr)
		return report
	}
	byName := make(map[string]discovery.Component, len(found))
	for _, c := range found {
		byName[c.Name] = c
	}

	names := make(map[string]bool, len(registered))
	for _, c := range registered {
		names[c.Name] = true
		check := "component " + c.Name
		switch d, ok := byName[c.Name]; {
		case c.EntryPoint != "" && platform.IsExecutable(c.EntryPoint):
			report.add(check, true, "%s", c.EntryPoint)
		case ok:
			report.add(check, true, "%s (%s)", d.EntryPoint, d.Source)
		default:
			report.add(check, false, "installed but entry point cannot be resolved; reinstall with --force or uninstall")
		}
	}

	for _, c := range found {
		if c.Source == discovery.SourceGlobal && !names[c.Name] {
			report.add("component "+c.Name, false, "global package %s is installed but not registered", c.PackageID)
		}
	}
	return report
}
