// Package discovery finds runnable components on disk without consulting or
// mutating the registry. It walks an ordered list of search roots, resolves
// each candidate's entry point, and learns its published commands from a
// manifest or, failing that, by asking the executable to list them.
package discovery
