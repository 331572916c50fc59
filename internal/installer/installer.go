package installer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/conduit-cli/conduit/internal/fault"
	"github.com/conduit-cli/conduit/internal/registry"
)

// Installer gates and performs package operations.
type Installer struct {
	pm          PackageManager
	eligibility Eligibility
	logger      *slog.Logger
}

// New returns an Installer.
func New(pm PackageManager, eligibility Eligibility, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.Default().With("component", "installer")
	}
	return &Installer{pm: pm, eligibility: eligibility, logger: logger}
}

// Validate applies the syntax gate and returns a validation-category error.
func (i *Installer) Validate(packageID string) error {
	if err := ValidatePackageName(packageID); err != nil {
		return fault.Validation("validate", err)
	}
	return nil
}

// CheckEligible applies the ecosystem gate. Network problems are reported as
// network-category errors, everything else as eligibility.
func (i *Installer) CheckEligible(ctx context.Context, packageID string, dev bool) error {
	err := i.eligibility.CheckEligible(ctx, packageID, dev)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMetadataUnavailable):
		return fault.Network("eligibility", err)
	default:
		return fault.Eligibility("eligibility", err)
	}
}

// Install runs both gates and then the package manager. No process is
// started unless both gates pass.
func (i *Installer) Install(ctx context.Context, packageID string, dev bool) (Result, error) {
	if err := i.Validate(packageID); err != nil {
		return Result{}, err
	}
	if err := i.CheckEligible(ctx, packageID, dev); err != nil {
		return Result{}, err
	}
	return i.Require(ctx, packageID, dev)
}

// Require runs the package manager install step only. Callers must have
// passed Validate and CheckEligible for packageID first.
func (i *Installer) Require(ctx context.Context, packageID string, dev bool) (Result, error) {
	i.logger.Info("running package manager", "op", "require", "package", packageID, "dev", dev)
	return i.finish("install", packageID)(i.pm.Require(ctx, packageID, dev))
}

// Remove runs the syntax gate and then the package manager.
func (i *Installer) Remove(ctx context.Context, packageID string) (Result, error) {
	if err := i.Validate(packageID); err != nil {
		return Result{}, err
	}
	i.logger.Info("running package manager", "op", "remove", "package", packageID)
	return i.finish("remove", packageID)(i.pm.Remove(ctx, packageID))
}

// Update runs the syntax gate and then a package manager update.
func (i *Installer) Update(ctx context.Context, packageID string) (Result, error) {
	if err := i.Validate(packageID); err != nil {
		return Result{}, err
	}
	i.logger.Info("running package manager", "op", "update", "package", packageID)
	return i.finish("update", packageID)(i.pm.Update(ctx, packageID))
}

// InstalledVersion asks the package manager which version is installed.
// It returns "unknown" whenever that cannot be determined.
func (i *Installer) InstalledVersion(ctx context.Context, packageID string) string {
	if ValidatePackageName(packageID) != nil {
		return registry.UnknownVersion
	}
	res, err := i.pm.Show(ctx, packageID)
	if err != nil || !res.Success {
		i.logger.Debug("installed version unavailable", "package", packageID, "error", err, "exit_code", res.ExitCode)
		return registry.UnknownVersion
	}
	if v := parseShowVersion(res.Output); v != "" {
		return v
	}
	return registry.UnknownVersion
}

func (i *Installer) finish(op, packageID string) func(Result, error) (Result, error) {
	return func(res Result, err error) (Result, error) {
		if err != nil {
			return res, fault.Process(op, err)
		}
		if !res.Success {
			i.logger.Warn("package manager failed", "op", op, "package", packageID, "exit_code", res.ExitCode)
			return res, fault.Process(op, fmt.Errorf("%w: %s exited with code %d", ErrPackageManagerFailed, packageID, res.ExitCode))
		}
		return res, nil
	}
}
