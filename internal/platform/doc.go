// Package platform wraps the OS-specific pieces of the component lifecycle:
// permission bits, executable detection, and the argv-based process runner
// every external call goes through. Commands are never built as shell strings.
package platform
