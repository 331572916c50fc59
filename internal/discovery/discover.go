package discovery

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/conduit-cli/conduit/internal/branding"
	"github.com/conduit-cli/conduit/internal/manifest"
	"github.com/conduit-cli/conduit/internal/platform"
	"github.com/conduit-cli/conduit/internal/userdata"
)

// DefaultIntrospectTimeout bounds a single `list --format=json` call.
const DefaultIntrospectTimeout = 3 * time.Second

// Discoverer scans search roots for components.
type Discoverer struct {
	roots       []Root
	runner      platform.Runner
	timeout     time.Duration
	hostVersion string
	logger      *slog.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithRunner sets the runner used for introspection.
func WithRunner(r platform.Runner) Option {
	return func(d *Discoverer) { d.runner = r }
}

// WithIntrospectTimeout bounds each introspection call.
func WithIntrospectTimeout(t time.Duration) Option {
	return func(d *Discoverer) { d.timeout = t }
}

// WithHostVersion enables min_host_version checks against v.
func WithHostVersion(v string) Option {
	return func(d *Discoverer) { d.hostVersion = v }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Discoverer) { d.logger = l }
}

// New returns a Discoverer over roots, searched in order.
func New(roots []Root, opts ...Option) *Discoverer {
	d := &Discoverer{
		roots:   roots,
		runner:  platform.ExecRunner{},
		timeout: DefaultIntrospectTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default().With("component", "discovery")
	}
	return d
}

// DefaultRoots returns the standard search order: bundled, development
// (platform-team mode only), user, then global packages. Roots that cannot
// be resolved are left out.
func DefaultRoots() []Root {
	var roots []Root
	if p, err := userdata.GetBundledRoot(); err == nil {
		roots = append(roots, Root{Source: SourceBundled, Path: p})
	}
	if p := userdata.GetDevRoot(); p != "" {
		roots = append(roots, Root{Source: SourceDev, Path: p})
	}
	if p, err := userdata.GetComponentsRoot(); err == nil {
		roots = append(roots, Root{Source: SourceUser, Path: p})
	}
	if p, err := userdata.GetGlobalVendorDir(); err == nil {
		roots = append(roots, Root{Source: SourceGlobal, Path: p, Vendored: true})
	}
	return roots
}

// Roots returns the configured search roots.
func (d *Discoverer) Roots() []Root {
	return d.roots
}

// Discover returns every component found, sorted by name. When two roots hold
// a component with the same name the earlier root wins. Unreadable roots and
// broken candidates are skipped.
func (d *Discoverer) Discover(ctx context.Context) ([]Component, error) {
	seen := make(map[string]bool)
	var result []Component

	for _, root := range d.roots {
		for _, cand := range d.candidates(root) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if seen[cand.name] {
				d.logger.Debug("shadowed component skipped", "name", cand.name, "dir", cand.dir)
				continue
			}
			c, ok := d.inspect(ctx, root.Source, cand)
			if !ok {
				continue
			}
			seen[c.Name] = true
			result = append(result, c)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Find discovers the component called name, if any.
func (d *Discoverer) Find(ctx context.Context, name string) (Component, bool, error) {
	all, err := d.Discover(ctx)
	if err != nil {
		return Component{}, false, err
	}
	for _, c := range all {
		if c.Name == name {
			return c, true, nil
		}
	}
	return Component{}, false, nil
}

// ResolveEntryPoint locates the executable for a component directory:
// <dir>/<name> first, then <dir>/bin/<name>, for each name given.
func ResolveEntryPoint(dir string, names ...string) (string, bool) {
	for _, name := range names {
		if name == "" {
			continue
		}
		for _, p := range []string{
			filepath.Join(dir, name),
			filepath.Join(dir, "bin", name),
		} {
			if platform.IsExecutable(p) {
				return p, true
			}
		}
	}
	return "", false
}

// NameFromPackage derives a component name from a vendor/name package id by
// dropping the vendor and the product prefix: "acme/conduit-deploy" becomes
// "deploy".
func NameFromPackage(packageID string) string {
	name := packageID
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if trimmed := strings.TrimPrefix(name, branding.ComponentPrefix()); trimmed != "" {
		name = trimmed
	}
	return name
}

type candidate struct {
	name      string
	dirName   string
	packageID string
	dir       string
}

func (d *Discoverer) candidates(root Root) []candidate {
	entries, err := readDirs(root.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			d.logger.Debug("search root unreadable", "root", root.Path, "error", err)
		}
		return nil
	}

	var out []candidate
	for _, e := range entries {
		dir := filepath.Join(root.Path, e)
		if !root.Vendored {
			out = append(out, candidate{name: e, dirName: e, dir: dir})
			continue
		}
		pkgs, err := readDirs(dir)
		if err != nil {
			continue
		}
		for _, p := range pkgs {
			id := e + "/" + p
			out = append(out, candidate{
				name:      NameFromPackage(id),
				dirName:   p,
				packageID: id,
				dir:       filepath.Join(dir, p),
			})
		}
	}
	return out
}

func (d *Discoverer) inspect(ctx context.Context, source Source, cand candidate) (Component, bool) {
	log := d.logger.With("dir", cand.dir)

	entry, ok := ResolveEntryPoint(cand.dir, cand.dirName, cand.name)
	if !ok {
		return Component{}, false
	}

	c := Component{
		Name:       cand.name,
		PackageID:  cand.packageID,
		Version:    "unknown",
		EntryPoint: entry,
		Dir:        cand.dir,
		Source:     source,
	}

	m, err := manifest.Load(cand.dir)
	switch {
	case err == nil:
		if err := manifest.CheckHostVersion(m.MinHostVersion, d.hostVersion); err != nil {
			log.Warn("component skipped", "reason", "incompatible host", "error", err)
			return Component{}, false
		}
		c.Manifest = true
		c.Version = m.Version
		c.Description = m.Description
		c.Commands = m.PublishedCommands()
	case errors.Is(err, manifest.ErrNoManifest):
		info, ierr := d.introspect(ctx, entry)
		if ierr != nil {
			log.Debug("component skipped", "reason", "introspection failed", "error", ierr)
			return Component{}, false
		}
		c.Commands = info.commands
		if info.version != "" {
			c.Version = info.version
		}
		c.Description = info.description
	default:
		log.Warn("component skipped", "reason", "invalid manifest", "error", err)
		return Component{}, false
	}

	if c.Commands == nil {
		c.Commands = []string{}
	}
	return c, true
}

// readDirs lists the subdirectory names of path, skipping hidden entries.
func readDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() {
			names = append(names, e.Name())
			continue
		}
		// Follow symlinked component directories.
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(path, e.Name())); err == nil && info.IsDir() {
				names = append(names, e.Name())
			}
		}
	}
	return names, nil
}
