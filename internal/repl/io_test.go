package repl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadByteSkipCR(t *testing.T) {
	r := strings.NewReader("a\r\nb")

	var got []byte
	for {
		b, err := readByteSkipCR(r)
		require.NoError(t, err)
		if len(b) == 0 {
			break
		}
		got = append(got, b...)
	}

	assert.Equal(t, "a\nb", string(got))
}

func TestReadByteSkipCROnlyCarriageReturns(t *testing.T) {
	r := strings.NewReader("\r\r")

	b, err := readByteSkipCR(r)
	require.NoError(t, err)
	assert.Empty(t, b, "a stream of bare CRs drains to closure")
}

func TestReadByteSkipCREmptyOnClosedStream(t *testing.T) {
	r := strings.NewReader("")

	b, err := readByteSkipCR(r)
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Empty(t, b)
}
