package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// DefaultCheckInterval is how long a completed check is reused.
const DefaultCheckInterval = 6 * time.Hour

// CheckCache holds the result of the last completed check.
type CheckCache struct {
	CheckedAt time.Time         `json:"checked_at"`
	Checked   map[string]string `json:"checked"` // name -> version at check time
	Updates   []UpdateRecord    `json:"updates"`
}

// Covers reports whether the cache was computed for exactly these targets.
func (c *CheckCache) Covers(targets []Target) bool {
	if c == nil || len(c.Checked) != len(targets) {
		return false
	}
	for _, t := range targets {
		if v, ok := c.Checked[t.Name]; !ok || v != t.Version {
			return false
		}
	}
	return true
}

// CacheFile reads and writes the check cache.
type CacheFile struct {
	fs   afero.Fs
	path string
}

// NewCacheFile returns a cache at path on fs. A nil fs means the OS filesystem.
func NewCacheFile(fs afero.Fs, path string) *CacheFile {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &CacheFile{fs: fs, path: path}
}

// Load reads the cache. Returns nil, nil if the cache file does not exist
// (first run).
func (f *CacheFile) Load() (*CheckCache, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading update cache: %w", err)
	}

	var cache CheckCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing update cache: %w", err)
	}
	return &cache, nil
}

// Save writes the cache through a temp file and rename.
func (f *CacheFile) Save(cache *CheckCache) error {
	dir := filepath.Dir(f.path)
	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling update cache: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("writing update cache: %w", err)
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("replacing update cache: %w", err)
	}
	return nil
}

// IsCacheStale returns true if the cache is older than maxAge or nil.
func IsCacheStale(cache *CheckCache, maxAge time.Duration, now time.Time) bool {
	if cache == nil {
		return true
	}
	return now.Sub(cache.CheckedAt) > maxAge
}
