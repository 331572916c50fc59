// Package registry persists the set of installed components to a single JSON
// file: a "registry" object keyed by component name and a free-form
// "settings" object. Every mutation is read-modify-write against the file and
// lands through a temp file plus rename, so a crash mid-write leaves the
// previous content intact. Concurrent writers resolve as last writer wins.
package registry
