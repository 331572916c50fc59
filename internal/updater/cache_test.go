package updater

import (
	"testing"
	"time"

	"github.com/spf13/afero"
)

const cachePath = "/home/u/.conduit/cache/update-check.json"

func TestCacheFile_LoadMissing(t *testing.T) {
	cache, err := NewCacheFile(afero.NewMemMapFs(), cachePath).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache != nil {
		t.Error("expected nil cache for missing file")
	}
}

func TestCacheFile_SaveAndLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := NewCacheFile(fs, cachePath)

	now := time.Now().Truncate(time.Second)
	original := &CheckCache{
		CheckedAt: now,
		Checked:   map[string]string{"deploy": "1.0.0"},
		Updates: []UpdateRecord{{
			Name: "deploy", CurrentVersion: "1.0.0", LatestVersion: "1.1.0",
			UpstreamURL: "https://github.com/acme/deploy/releases/v1.1.0", Priority: PrioritySecurity,
		}},
	}
	if err := f.Save(original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := f.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.CheckedAt.Equal(now) {
		t.Errorf("CheckedAt = %v, want %v", loaded.CheckedAt, now)
	}
	if len(loaded.Updates) != 1 || loaded.Updates[0].Priority != PrioritySecurity {
		t.Errorf("Updates = %+v", loaded.Updates)
	}
	if exists, _ := afero.Exists(fs, cachePath+".tmp"); exists {
		t.Error("temp file left behind")
	}
}

func TestCacheFile_Corrupted(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, cachePath, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCacheFile(fs, cachePath).Load(); err == nil {
		t.Error("expected error for corrupted cache")
	}
}

func TestIsCacheStale(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		cache    *CheckCache
		maxAge   time.Duration
		expected bool
	}{
		{"nil cache is stale", nil, 6 * time.Hour, true},
		{"fresh cache", &CheckCache{CheckedAt: now}, 6 * time.Hour, false},
		{"stale cache", &CheckCache{CheckedAt: now.Add(-7 * time.Hour)}, 6 * time.Hour, true},
		{"just past boundary", &CheckCache{CheckedAt: now.Add(-6*time.Hour - time.Second)}, 6 * time.Hour, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCacheStale(tt.cache, tt.maxAge, now); got != tt.expected {
				t.Errorf("IsCacheStale = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCheckCache_Covers(t *testing.T) {
	cache := &CheckCache{Checked: map[string]string{"a": "1.0.0", "b": "2.0.0"}}
	tests := []struct {
		name    string
		targets []Target
		want    bool
	}{
		{"same set", []Target{{Name: "a", Version: "1.0.0"}, {Name: "b", Version: "2.0.0"}}, true},
		{"version changed", []Target{{Name: "a", Version: "1.1.0"}, {Name: "b", Version: "2.0.0"}}, false},
		{"component added", []Target{{Name: "a", Version: "1.0.0"}, {Name: "b", Version: "2.0.0"}, {Name: "c"}}, false},
		{"component removed", []Target{{Name: "a", Version: "1.0.0"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cache.Covers(tt.targets); got != tt.want {
				t.Errorf("Covers = %v, want %v", got, tt.want)
			}
		})
	}
	var nilCache *CheckCache
	if nilCache.Covers(nil) {
		t.Error("nil cache should not cover anything")
	}
}
