// Package delegate runs a component's entry point for one
// component:subcommand invocation. Options are rendered as command-line
// flags, output streams straight to the host's terminal, and the child's exit
// code is returned unchanged. Timeouts map to 124 and spawn failures to 127.
package delegate
