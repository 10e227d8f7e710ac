//go:build !windows

package repl

import (
	"os"

	"golang.org/x/sys/unix"
)

// ioChunkSize bounds a single drain of the output pipe. It matches the
// usual default I/O buffer size.
const ioChunkSize = 8192

// setNonblock marks the visible output descriptor non-blocking so a single
// read after readiness never blocks past what the kernel has buffered.
func setNonblock(f *os.File) error {
	return unix.SetNonblock(int(f.Fd()), true)
}

// readOutput blocks in poll(2) until the output descriptor is readable,
// then performs one bounded read. An empty result means the stream closed.
// A PTY master raises EIO once the slave side is gone; that is closure too.
func (c *chain) readOutput() ([]byte, error) {
	fd := int(c.out.Fd())
	buf := make([]byte, ioChunkSize)
	for {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}

		m, rerr := unix.Read(fd, buf)
		switch {
		case m > 0:
			return buf[:m], nil
		case m == 0:
			return []byte{}, nil
		case rerr == unix.EAGAIN || rerr == unix.EINTR:
			continue
		case rerr == unix.EIO:
			return []byte{}, nil
		default:
			return nil, rerr
		}
	}
}
