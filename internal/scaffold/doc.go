// Package scaffold generates a new component skeleton from embedded
// templates. It powers the "create" command: a manifest, an executable entry
// point that answers the host's introspection call, and a composer.json that
// carries the ecosystem marker keyword so the package passes the install
// eligibility gate once published.
package scaffold
