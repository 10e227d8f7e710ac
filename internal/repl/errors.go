package repl

import (
	"fmt"
	"strings"
)

// UnsupportedCommand is the sentinel first argument marking a launch
// configuration as unusable on this system. The remaining arguments carry
// the human-readable reasons.
const UnsupportedCommand = "[unsupported]"

// UnsupportedError reports a launch declared unusable before any spawn
// attempt. It propagates to the caller unmodified.
type UnsupportedError struct {
	Reasons []string
}

func (e *UnsupportedError) Error() string {
	if len(e.Reasons) == 0 {
		return "launch unsupported"
	}
	return "launch unsupported: " + strings.Join(e.Reasons, "; ")
}

// ResolutionError reports a requested virtual environment tag that discovery
// did not find.
type ResolutionError struct {
	Tag   string
	Known []string
}

func (e *ResolutionError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("virtualenv %q not found: no environments discovered", e.Tag)
	}
	return fmt.Sprintf("virtualenv %q not found, discovered: %s", e.Tag, strings.Join(e.Known, ", "))
}
