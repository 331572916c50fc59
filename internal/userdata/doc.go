// Package userdata resolves the ~/.conduit/ directory layout: the user
// components root, the bundled and development roots, the package manager's
// global vendor directory, and the registry, cache, log and history files.
// Every location can be overridden with a CONDUIT_* environment variable.
package userdata
