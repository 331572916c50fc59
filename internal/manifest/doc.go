// Package manifest parses and validates component manifests. A manifest is a
// component.json, component.yaml or manifest.json file at the root of a
// component directory; it declares the component's published commands and the
// minimum host version it requires. Manifests are validated against an
// embedded JSON Schema before they are trusted.
package manifest
