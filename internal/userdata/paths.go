package userdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/conduit-cli/conduit/internal/branding"
)

// Directory and file name constants for the ~/.conduit layout.
const (
	ComponentsDir   = "components"
	CacheDir        = "cache"
	LogsDir         = "logs"
	RegistryFile    = "registry.json"
	UpdateCacheFile = "update-check.json"
	LogFile         = "conduit.log"
	HistoryFile     = "history.db"
)

// Permission constants.
const (
	DirPermSecure  os.FileMode = 0700
	FilePermSecure os.FileMode = 0600
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// GetRoot returns the data root. It checks the CONDUIT_DATA_DIR environment
// variable first, then falls back to ~/.conduit.
func GetRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("DATA_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// GetComponentsRoot returns the user components directory.
// Checks CONDUIT_COMPONENTS first, then falls back to ~/.conduit/components.
func GetComponentsRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("COMPONENTS")); v != "" {
		return v, nil
	}
	return underRoot(ComponentsDir)
}

// GetBundledRoot returns the components directory shipped next to the host
// binary (<exe-dir>/../components). CONDUIT_BUNDLED overrides it.
func GetBundledRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("BUNDLED")); v != "" {
		return v, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "..", ComponentsDir), nil
}

// GetDevRoot returns $CONDUIT_HOME/components in platform-team mode and an
// empty string otherwise.
func GetDevRoot() string {
	if DetectMode() != ModePlatformTeam {
		return ""
	}
	return filepath.Join(os.Getenv(branding.EnvVar("HOME")), ComponentsDir)
}

// GetComposerHome returns the package manager's global home. COMPOSER_HOME
// wins; otherwise ~/.config/composer is used when it exists, then ~/.composer.
func GetComposerHome() (string, error) {
	if v := os.Getenv("COMPOSER_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	xdg := filepath.Join(home, ".config", "composer")
	if info, err := os.Stat(xdg); err == nil && info.IsDir() {
		return xdg, nil
	}
	return filepath.Join(home, ".composer"), nil
}

// GetGlobalVendorDir returns <composer-home>/vendor, where globally required
// packages are unpacked as <vendor>/<name>.
func GetGlobalVendorDir() (string, error) {
	home, err := GetComposerHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "vendor"), nil
}

// GetRegistryPath returns the registry file path.
// Checks CONDUIT_REGISTRY first, then falls back to ~/.conduit/registry.json.
func GetRegistryPath() (string, error) {
	if v := os.Getenv(branding.EnvVar("REGISTRY")); v != "" {
		return v, nil
	}
	return underRoot(RegistryFile)
}

// GetCacheDir returns ~/.conduit/cache.
func GetCacheDir() (string, error) {
	return underRoot(CacheDir)
}

// GetUpdateCachePath returns the update check cache file.
func GetUpdateCachePath() (string, error) {
	dir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, UpdateCacheFile), nil
}

// GetLogPath returns the rotating log file path.
// Checks CONDUIT_LOG_FILE first, then falls back to ~/.conduit/logs/conduit.log.
func GetLogPath() (string, error) {
	if v := os.Getenv(branding.EnvVar("LOG_FILE")); v != "" {
		return v, nil
	}
	return underRoot(filepath.Join(LogsDir, LogFile))
}

// GetHistoryPath returns the lifecycle history database path.
// Checks CONDUIT_HISTORY_DB first, then falls back to ~/.conduit/history.db.
func GetHistoryPath() (string, error) {
	if v := os.Getenv(branding.EnvVar("HISTORY_DB")); v != "" {
		return v, nil
	}
	return underRoot(HistoryFile)
}

func underRoot(elem string) (string, error) {
	root, err := GetRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, elem), nil
}
