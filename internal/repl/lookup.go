package repl

import (
	"os"
	"path/filepath"
	"strings"
)

// findExecutable searches the PATH entries of env for executable, trying
// each extension from env["PATHEXT"] (default ".EXE") when the name carries
// none. Case is preserved; the first existing file wins. A name that
// already contains a directory component is returned unchanged, and "" is
// returned when nothing matches.
//
// This is the manual lookup needed where the spawn call does not search the
// child environment's PATH itself.
func findExecutable(executable string, env Environment) string {
	if executable != filepath.Base(executable) {
		return executable
	}

	pathext := env["PATHEXT"]
	if pathext == "" {
		pathext = ".EXE"
	}
	ext := filepath.Ext(executable)
	extensions := []string{ext}
	if ext == "" {
		extensions = strings.Split(pathext, string(os.PathListSeparator))
	}
	base := strings.TrimSuffix(executable, ext)

	for _, dir := range strings.Split(env["PATH"], string(os.PathListSeparator)) {
		for _, extension := range extensions {
			candidate := filepath.Join(dir, base+extension)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
