package userdata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/conduit-cli/conduit/internal/platform"
)

// EnsureLayout creates the data root and its components, cache and logs
// directories. Progress is written to w; pass io.Discard to stay quiet.
// Existing directories are left untouched.
func EnsureLayout(w io.Writer) error {
	root, err := GetRoot()
	if err != nil {
		return err
	}
	if err := ensureDir(w, root, DirPermNormal); err != nil {
		return err
	}

	components, err := GetComponentsRoot()
	if err != nil {
		return err
	}
	if err := ensureDir(w, components, DirPermNormal); err != nil {
		return err
	}

	if err := ensureDir(w, filepath.Join(root, CacheDir), DirPermNormal); err != nil {
		return err
	}

	// Logs may hold component arguments, keep them private.
	return ensureDir(w, filepath.Join(root, LogsDir), DirPermSecure)
}

// EnsureParent creates the parent directory of path.
func EnsureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermNormal); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(w io.Writer, path string, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	// MkdirAll may not apply exact perms if parent dirs needed creation.
	if err := platform.Chmod(path, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}
