package installer

import "errors"

var (
	// ErrInvalidPackageName is wrapped by every syntax gate failure.
	ErrInvalidPackageName = errors.New("invalid package name")
	// ErrPackageNotFound means the metadata registry has no such package.
	ErrPackageNotFound = errors.New("package not found")
	// ErrMissingMarker means the package exists but does not declare itself
	// a component.
	ErrMissingMarker = errors.New("package is not a component")
	// ErrMetadataUnavailable means the metadata registry could not be reached
	// or answered unexpectedly.
	ErrMetadataUnavailable = errors.New("package metadata unavailable")
	// ErrPackageManagerFailed means the package manager ran and exited non-zero.
	ErrPackageManagerFailed = errors.New("package manager failed")
)
