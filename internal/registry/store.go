package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
)

var (
	// ErrCorrupt is returned when the registry file exists but is not valid
	// JSON. Reads surface it so callers can fall back to an empty view; writes
	// refuse to replace the file.
	ErrCorrupt = errors.New("registry file is corrupt")
	// ErrNotFound is returned when a named component is not registered.
	ErrNotFound = errors.New("component not registered")
)

const filePerm os.FileMode = 0644

// Store reads and writes the registry file.
type Store struct {
	path string
	fs   afero.Fs
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithFs sets the filesystem the store operates on.
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// WithClock sets the time source used for InstalledAt defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns a store backed by the file at path on the OS filesystem.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		fs:   afero.NewOsFs(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the registry file location.
func (s *Store) Path() string {
	return s.path
}

// IsInstalled reports whether name is registered. A corrupt file reads as
// empty.
func (s *Store) IsInstalled(name string) bool {
	_, ok, _ := s.Get(name)
	return ok
}

// Get returns the registered component called name.
func (s *Store) Get(name string) (Component, bool, error) {
	doc, err := s.load()
	if err != nil {
		return Component{}, false, err
	}
	c, ok := doc.Registry[name]
	if !ok {
		return Component{}, false, nil
	}
	c.Name = name
	return c, true, nil
}

// List returns every registered component sorted by name.
func (s *Store) List() ([]Component, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Component, 0, len(doc.Registry))
	for name, c := range doc.Registry {
		c.Name = name
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Register records c, replacing any existing entry with the same name. An
// empty version is stored as "unknown", an empty status as active, and a
// zero InstalledAt as the current time.
func (s *Store) Register(c Component) error {
	if c.Name == "" {
		return fmt.Errorf("registering component: empty name")
	}
	if c.Version == "" {
		c.Version = UnknownVersion
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	if c.InstalledAt.IsZero() {
		c.InstalledAt = s.now().UTC()
	}
	if c.Commands == nil {
		c.Commands = []string{}
	}
	return s.update(func(doc *document) (bool, error) {
		doc.Registry[c.Name] = c
		return true, nil
	})
}

// Unregister removes name. Removing an absent name is a no-op and does not
// touch the file.
func (s *Store) Unregister(name string) error {
	return s.update(func(doc *document) (bool, error) {
		if _, ok := doc.Registry[name]; !ok {
			return false, nil
		}
		delete(doc.Registry, name)
		return true, nil
	})
}

// SetStatus changes the activation state of a registered component.
func (s *Store) SetStatus(name string, status Status) error {
	return s.update(func(doc *document) (bool, error) {
		c, ok := doc.Registry[name]
		if !ok {
			return false, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if c.Status == status {
			return false, nil
		}
		c.Status = status
		doc.Registry[name] = c
		return true, nil
	})
}

// Settings returns a copy of the settings map.
func (s *Store) Settings() (map[string]any, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(doc.Settings))
	for k, v := range doc.Settings {
		out[k] = v
	}
	return out, nil
}

// GetSetting returns one setting.
func (s *Store) GetSetting(key string) (any, bool, error) {
	doc, err := s.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc.Settings[key]
	return v, ok, nil
}

// SetSetting stores value under key. A nil value deletes the key.
func (s *Store) SetSetting(key string, value any) error {
	return s.update(func(doc *document) (bool, error) {
		if value == nil {
			delete(doc.Settings, key)
		} else {
			doc.Settings[key] = value
		}
		return true, nil
	})
}

// Ensure creates an empty registry file when none exists.
func (s *Store) Ensure() error {
	_, err := s.load()
	return err
}

// load reads the registry, creating it empty on first use.
func (s *Store) load() (*document, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			doc := newDocument()
			if err := s.write(doc); err != nil {
				return nil, err
			}
			return doc, nil
		}
		return nil, fmt.Errorf("reading registry %s: %w", s.path, err)
	}

	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if doc.Registry == nil {
		doc.Registry = map[string]Component{}
	}
	if doc.Settings == nil {
		doc.Settings = map[string]any{}
	}
	return doc, nil
}

// update applies fn to the current document and persists it when fn reports
// a change.
func (s *Store) update(fn func(*document) (bool, error)) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	return s.write(doc)
}

// write persists doc through a temp file in the same directory followed by a
// rename, so readers only ever see the old or the new content.
func (s *Store) write(doc *document) error {
	onDisk := &document{Registry: make(map[string]Component, len(doc.Registry)), Settings: doc.Settings}
	for name, c := range doc.Registry {
		c.Name = ""
		onDisk.Registry[name] = c
	}
	data, err := json.MarshalIndent(onDisk, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating registry directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, ".registry-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = s.fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("syncing registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing registry temp file: %w", err)
	}
	if err := s.fs.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return fmt.Errorf("setting registry permissions: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replacing registry %s: %w", s.path, err)
	}
	return nil
}
