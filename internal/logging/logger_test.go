package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	logger, err := New(Config{Level: "debug", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	// Must be safe to use without any setup.
	logger.Info("ignored")
	logger.Named("child").Debug("ignored")
}
