// Package updater checks installed components for newer upstream releases.
// Each component's latest GitHub release is queried concurrently under its
// own timeout; failures are logged and left out of the result. Results are
// cached on disk and reused until the check interval elapses, which also
// powers the non-blocking startup banner.
package updater
