package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/conduit-cli/conduit/internal/delegate"
	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/conduit-cli/conduit/internal/metrics"
	"github.com/conduit-cli/conduit/internal/platform"
)

var (
	// ErrBadInvocation is returned for tokens not shaped component:subcommand.
	ErrBadInvocation = errors.New("expected component:subcommand")
	// ErrInactive is returned when dispatching to a disabled component.
	ErrInactive = errors.New("component is disabled")
)

// Available is a component and the commands it publishes.
type Available struct {
	Name     string   `json:"name"`
	Commands []string `json:"commands"`
}

// UnknownError reports a dispatch target that does not exist, together with
// what could have been called instead.
type UnknownError struct {
	Component  string
	Subcommand string
	// Available lists every known component, or only Component when the
	// component exists but lacks Subcommand.
	Available []Available
}

func (e *UnknownError) Error() string {
	var b strings.Builder
	if e.Subcommand != "" {
		fmt.Fprintf(&b, "unknown command %q for component %q", e.Subcommand, e.Component)
	} else {
		fmt.Fprintf(&b, "unknown component %q", e.Component)
	}
	if len(e.Available) == 0 {
		b.WriteString("; no components are installed")
		return b.String()
	}
	b.WriteString("; available:")
	for _, a := range e.Available {
		fmt.Fprintf(&b, "\n  %s: %s", a.Name, strings.Join(a.Commands, ", "))
	}
	return b.String()
}

// ParseInvocation splits a component:subcommand token.
func ParseInvocation(token string) (component, subcommand string, err error) {
	component, subcommand, ok := strings.Cut(token, ":")
	if !ok || component == "" || subcommand == "" {
		return "", "", fault.Validation("dispatch", fmt.Errorf("%w, got %q", ErrBadInvocation, token))
	}
	return component, subcommand, nil
}

// Dispatch resolves the component named in token through the registry and
// then discovery and delegates subcommand to it. The returned code is the
// child's exit code; an error is returned only when nothing was run.
func (o *Orchestrator) Dispatch(ctx context.Context, token string, args []string, options map[string]any) (int, error) {
	name, sub, err := ParseInvocation(token)
	if err != nil {
		return 1, err
	}

	target, commands, err := o.resolveTarget(ctx, name)
	if err != nil {
		return 1, err
	}
	if len(commands) > 0 && !slices.Contains(commands, sub) {
		return 1, fault.Validation("dispatch", &UnknownError{
			Component:  name,
			Subcommand: sub,
			Available:  []Available{{Name: name, Commands: commands}},
		})
	}

	start := time.Now()
	code := o.executor.Execute(ctx, target, sub, args, options)
	metrics.ObserveDispatch(name, code, time.Since(start))
	return code, nil
}

// resolveTarget finds a runnable entry point for name. Registered components
// use their recorded entry point when it is still executable and fall back to
// discovery otherwise.
func (o *Orchestrator) resolveTarget(ctx context.Context, name string) (delegate.Target, []string, error) {
	reg, registered, err := o.lister.Get(name)
	if err != nil {
		o.logger.Warn("registry unreadable, falling back to discovery", "error", err)
		registered = false
	}
	if registered && !reg.Active() {
		return delegate.Target{}, nil, fault.Eligibility("dispatch", fmt.Errorf("%w: %s (run enable %s)", ErrInactive, name, name))
	}
	if registered && reg.EntryPoint != "" && platform.IsExecutable(reg.EntryPoint) {
		return delegate.Target{Name: name, EntryPoint: reg.EntryPoint}, reg.Commands, nil
	}

	found, ok, derr := o.discoverer.Find(ctx, name)
	if derr != nil {
		return delegate.Target{}, nil, fault.Process("dispatch", derr)
	}
	if ok {
		commands := found.Commands
		if registered && len(reg.Commands) > 0 {
			commands = reg.Commands
		}
		return delegate.Target{Name: name, EntryPoint: found.EntryPoint}, commands, nil
	}

	return delegate.Target{}, nil, fault.Validation("dispatch", &UnknownError{
		Component: name,
		Available: o.available(ctx),
	})
}

// available merges registered and discovered components for error reports.
func (o *Orchestrator) available(ctx context.Context) []Available {
	byName := map[string][]string{}
	if regs, err := o.lister.List(); err == nil {
		for _, c := range regs {
			if c.Active() {
				byName[c.Name] = c.Commands
			}
		}
	}
	if found, err := o.discoverer.Discover(ctx); err == nil {
		for _, c := range found {
			if _, seen := byName[c.Name]; !seen {
				byName[c.Name] = c.Commands
			}
		}
	}
	out := make([]Available, 0, len(byName))
	for name, cmds := range byName {
		out = append(out, Available{Name: name, Commands: cmds})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
