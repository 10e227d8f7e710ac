//go:build windows

package repl

import "os"

// setNonblock is a no-op: the pipe has no non-blocking mode here, which is
// why reads are a single byte at a time.
func setNonblock(*os.File) error { return nil }

// readOutput reads one byte at a time. Without peekable pipe semantics
// there is no way to ask how many bytes are ready, and a larger blocking
// read would hold back short interactive output indefinitely.
func (c *chain) readOutput() ([]byte, error) {
	return readByteSkipCR(c.out)
}
