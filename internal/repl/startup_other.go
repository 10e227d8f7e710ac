//go:build !windows

package repl

import "os/exec"

// applyStartupAttrs is a no-op: POSIX has no console-window concept.
func applyStartupAttrs(*exec.Cmd) {}
