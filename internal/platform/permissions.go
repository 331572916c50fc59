package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// windowsExecExts are the extensions treated as runnable on Windows.
var windowsExecExts = []string{".exe", ".bat", ".cmd", ".com"}

// IsExecutable reports whether path is a regular file the current user can
// execute. On Windows the file extension decides.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(path))
		for _, e := range windowsExecExts {
			if ext == e {
				return true
			}
		}
		return false
	}
	return info.Mode().Perm()&0111 != 0
}
