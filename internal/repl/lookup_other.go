//go:build !windows

package repl

// resolveCommand returns argv unchanged; the OS searches PATH itself.
func resolveCommand(argv []string, _ Environment) []string {
	return argv
}
