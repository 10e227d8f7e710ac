//go:build windows

package repl

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// applyStartupAttrs requests a normally shown window for the child while
// suppressing creation of a fresh console window.
func applyStartupAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    false, // SW_SHOWNORMAL
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
