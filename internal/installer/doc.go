// Package installer installs and removes component packages through an
// external Composer-compatible package manager. Requests pass a syntax gate
// on the package identifier and, for installs, an ecosystem eligibility
// check against Packagist metadata before any process is spawned.
package installer
