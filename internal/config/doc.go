// Package config manages user-level settings stored at ~/.conduit/config.yaml.
// It provides functions to load, read, and write configuration keys, and a
// typed Settings view with defaults for the timeouts, endpoints, and package
// manager used by the component lifecycle.
package config
