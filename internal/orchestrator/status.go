package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/conduit-cli/conduit/internal/discovery"
	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/conduit-cli/conduit/internal/history"
	"github.com/conduit-cli/conduit/internal/registry"
)

// List returns registered components. Inactive ones are included only when
// all is set. A corrupt registry reads as empty.
func (o *Orchestrator) List(all bool) ([]registry.Component, error) {
	components, err := o.lister.List()
	if errors.Is(err, registry.ErrCorrupt) {
		o.logger.Warn("registry is corrupt, treating as empty", "error", err)
		return []registry.Component{}, nil
	}
	if err != nil {
		return nil, fault.Registry("list", err)
	}
	if all {
		return components, nil
	}
	out := components[:0]
	for _, c := range components {
		if c.Active() {
			out = append(out, c)
		}
	}
	return out, nil
}

// Discover scans the search roots and keeps the components matching terms.
// It never mutates the registry.
func (o *Orchestrator) Discover(ctx context.Context, terms []string) ([]discovery.Component, error) {
	found, err := o.discoverer.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return discovery.Filter(found, terms), nil
}

// Enable marks a registered component active.
func (o *Orchestrator) Enable(ctx context.Context, name string) error {
	return o.setStatus(ctx, history.OpEnable, name, registry.StatusActive)
}

// Disable marks a registered component inactive so dispatch refuses it.
func (o *Orchestrator) Disable(ctx context.Context, name string) error {
	return o.setStatus(ctx, history.OpDisable, name, registry.StatusInactive)
}

func (o *Orchestrator) setStatus(ctx context.Context, op history.Op, name string, status registry.Status) error {
	c := registry.Component{Name: name}
	if existing, ok, err := o.lister.Get(name); err == nil && ok {
		c = existing
	}

	err := o.registrar.SetStatus(name, status)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		err = fault.Validation(string(op), fmt.Errorf("%w: %s", registry.ErrNotFound, name))
	case err != nil:
		err = fault.Registry(string(op), err)
	}
	o.logger.Info("status change", "name", name, "status", status, "error", err)
	o.record(ctx, op, c, err)
	return err
}
