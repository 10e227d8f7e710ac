//go:build windows

package repl

// resolveCommand replaces argv[0] with an explicit PATH/PATHEXT lookup
// against the child environment; the Windows spawn call does not do this
// search itself. When nothing matches, argv is returned unchanged and the
// spawn surfaces the OS error.
func resolveCommand(argv []string, env Environment) []string {
	out := append([]string(nil), argv...)
	if found := findExecutable(out[0], env); found != "" {
		out[0] = found
	}
	return out
}
