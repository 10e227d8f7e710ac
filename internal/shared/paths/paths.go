// Package paths provides small filesystem-path helpers shared across the
// module: user-home expansion for configured roots and the per-platform
// binary directory name used by virtual environments.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExpandUser replaces a leading "~" or "~/" with the current user's home
// directory. Paths without the prefix are returned unchanged, as is "~" when
// the home directory cannot be determined.
func ExpandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// BinDirName returns the executable directory name inside a virtual
// environment root: "Scripts" on Windows, "bin" everywhere else.
func BinDirName() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}
