// Package cli defines the Cobra command tree for the conduit CLI. Each file
// in this package registers one top-level command (install, update, run, etc.)
// with the root command. Command implementations delegate to the orchestrator
// for lifecycle logic and only handle flag parsing, I/O formatting, and exit codes.
package cli
