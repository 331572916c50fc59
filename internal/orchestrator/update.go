package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/conduit-cli/conduit/internal/history"
	"github.com/conduit-cli/conduit/internal/metrics"
	"github.com/conduit-cli/conduit/internal/registry"
	"github.com/conduit-cli/conduit/internal/updater"
)

// UpdateRequest describes an update invocation. An empty Name updates every
// registered component, which is also what All asks for explicitly.
type UpdateRequest struct {
	Name string
	All  bool
	// Check only reports available updates.
	Check bool
	// Force includes breaking-priority updates.
	Force bool
}

// UpdateReport lists what an update run found and did.
type UpdateReport struct {
	Available []updater.UpdateRecord `json:"available"`
	Applied   []updater.UpdateRecord `json:"applied,omitempty"`
	Skipped   []updater.UpdateRecord `json:"skipped,omitempty"`
	Failed    []updater.UpdateRecord `json:"failed,omitempty"`
}

// Update checks upstream for newer releases and, unless req.Check is set,
// applies them and re-registers the new versions. Breaking updates are
// skipped without req.Force. Per-component failures are collected and
// returned together after every update was attempted.
func (o *Orchestrator) Update(ctx context.Context, req UpdateRequest) (UpdateReport, error) {
	var report UpdateReport

	if req.Name != "" {
		if _, ok, err := o.lister.Get(req.Name); err != nil {
			return report, fault.Registry("update", err)
		} else if !ok {
			return report, fault.Validation("update", fmt.Errorf("%w: %s", registry.ErrNotFound, req.Name))
		}
	}

	records, err := o.checker.Check(ctx, true)
	if errors.Is(err, registry.ErrCorrupt) {
		return report, fault.Registry("update", err)
	}
	if err != nil {
		return report, fault.Network("update", err)
	}
	for _, r := range records {
		if req.Name == "" || r.Name == req.Name {
			report.Available = append(report.Available, r)
		}
	}
	publishAvailable(report.Available)

	if req.Check {
		return report, nil
	}

	var errs []error
	for _, rec := range report.Available {
		if rec.Priority == updater.PriorityBreaking && !req.Force {
			o.logger.Info("skipping breaking update", "name", rec.Name, "latest", rec.LatestVersion)
			report.Skipped = append(report.Skipped, rec)
			continue
		}
		if err := o.applyUpdate(ctx, rec); err != nil {
			report.Failed = append(report.Failed, rec)
			errs = append(errs, err)
			continue
		}
		report.Applied = append(report.Applied, rec)
	}
	return report, errors.Join(errs...)
}

func (o *Orchestrator) applyUpdate(ctx context.Context, rec updater.UpdateRecord) error {
	c, ok, err := o.lister.Get(rec.Name)
	if err != nil {
		return fault.Registry("update", err)
	}
	if !ok {
		c = registry.Component{Name: rec.Name, PackageID: rec.PackageID}
	}
	log := o.logger.With("name", c.Name, "package", c.PackageID)

	log.Info("updating", "from", rec.CurrentVersion, "to", rec.LatestVersion)
	res, err := o.upgrader.Update(ctx, c.PackageID)
	if err != nil {
		log.Warn("update failed", "error", err, "exit_code", res.ExitCode)
		o.record(ctx, history.OpUpdate, c, err)
		return err
	}

	c.Version = o.installer.InstalledVersion(ctx, c.PackageID)
	if c.Version == registry.UnknownVersion {
		c.Version = rec.LatestVersion
	}
	o.fillFromDiscovery(ctx, &c)

	if err := o.registrar.Register(c); err != nil {
		err = fault.Registry("update", fmt.Errorf("%w: %s was updated to %s but the registry still lists %s: %v",
			ErrRegistryInconsistent, c.PackageID, c.Version, rec.CurrentVersion, err))
		o.record(ctx, history.OpUpdate, c, err)
		return err
	}
	o.record(ctx, history.OpUpdate, c, nil)
	return nil
}

func publishAvailable(records []updater.UpdateRecord) {
	byPriority := map[string]int{}
	for _, r := range records {
		byPriority[string(r.Priority)]++
	}
	metrics.SetUpdatesAvailable(byPriority)
}
