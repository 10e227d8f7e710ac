//go:build windows

package repl

// AvailableSignals returns the handful of signal numbers the runtime maps
// on this platform; there is no full POSIX signal namespace to enumerate.
func AvailableSignals() map[string]int {
	return map[string]int{
		"SIGHUP":  1,
		"SIGINT":  2,
		"SIGQUIT": 3,
		"SIGKILL": 9,
		"SIGTERM": 15,
	}
}
