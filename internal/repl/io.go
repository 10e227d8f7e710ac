package repl

import (
	"errors"
	"io"
)

// readByteSkipCR returns the next single output byte, silently discarding
// carriage returns: the newline half of a CRLF pair is delivered on its
// own, which normalizes line endings without a lookahead. An empty result
// means the stream closed.
func readByteSkipCR(r io.Reader) ([]byte, error) {
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n == 1 {
			if b[0] == '\r' {
				continue
			}
			return []byte{b[0]}, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return []byte{}, nil
			}
			return nil, err
		}
	}
}
