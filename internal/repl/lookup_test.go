package repl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte{}, 0o755))
}

func TestFindExecutableWithPathext(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "python.EXE"))

	env := Environment{"PATH": dir, "PATHEXT": ".EXE"}

	assert.Equal(t, filepath.Join(dir, "python.EXE"), findExecutable("python", env))
}

func TestFindExecutableDefaultsPathext(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "python.EXE"))

	env := Environment{"PATH": dir}

	assert.Equal(t, filepath.Join(dir, "python.EXE"), findExecutable("python", env))
}

func TestFindExecutableExplicitExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "tool.bat"))

	env := Environment{"PATH": dir, "PATHEXT": ".EXE"}

	// An explicit extension wins over PATHEXT.
	assert.Equal(t, filepath.Join(dir, "tool.bat"), findExecutable("tool.bat", env))
}

func TestFindExecutableFirstPathEntryWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	touch(t, filepath.Join(first, "python.EXE"))
	touch(t, filepath.Join(second, "python.EXE"))

	env := Environment{
		"PATH":    first + string(os.PathListSeparator) + second,
		"PATHEXT": ".EXE",
	}

	assert.Equal(t, filepath.Join(first, "python.EXE"), findExecutable("python", env))
}

func TestFindExecutableSkipsSearchForPaths(t *testing.T) {
	// A name with a directory component is returned as-is.
	name := filepath.Join("some", "dir", "python")
	assert.Equal(t, name, findExecutable(name, Environment{}))
}

func TestFindExecutableNotFound(t *testing.T) {
	env := Environment{"PATH": t.TempDir(), "PATHEXT": ".EXE"}
	assert.Empty(t, findExecutable("python", env))
}
