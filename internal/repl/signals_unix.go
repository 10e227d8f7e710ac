//go:build !windows

package repl

import (
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// AvailableSignals maps signal names to numbers from the platform's signal
// namespace, for user-facing signal-selection tooling.
func AvailableSignals() map[string]int {
	signals := make(map[string]int)
	for n := 1; n <= 64; n++ {
		name := unix.SignalName(syscall.Signal(n))
		if !strings.HasPrefix(name, "SIG") {
			continue
		}
		signals[name] = n
	}
	return signals
}
