package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, "127.0.0.1", s.AutocompleteServerIP)
	assert.Equal(t, 4, s.CondaMinor)
	assert.Equal(t, "utf-8", s.Encoding)
	assert.NotEmpty(t, s.FilterCommand)
	assert.False(t, s.UseWrapped)
	assert.False(t, s.ForceSource)
	assert.Equal(t, "info", s.Logging.Level)
}

func TestLoadOrDefault(t *testing.T) {
	s := LoadOrDefault()

	assert.NotNil(t, s)
	assert.Equal(t, "utf-8", s.Encoding)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	t.Setenv("REPLKIT_DEBUG", "true")
	t.Setenv("REPLKIT_USE_WRAPPED", "true")
	t.Setenv("REPLKIT_CONDA_MINOR", "3")
	t.Setenv("REPLKIT_AUTOCOMPLETE_SERVER_IP", "10.0.0.5")

	s, err := Load()
	require.NoError(t, err)

	assert.True(t, s.Debug)
	assert.True(t, s.UseWrapped)
	assert.Equal(t, 3, s.CondaMinor)
	assert.Equal(t, "10.0.0.5", s.AutocompleteServerIP)
}

func TestLoadFileOverlaysEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
autocomplete_server_ip: 192.168.1.1
python_virtualenv_paths:
  - ~/envs
  - /opt/conda/envs
use_wrapped: true
default_extend_env:
  PY_VERSION: py3
getenv_command: ["bash", "--login", "-c", "env"]
`), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.1", s.AutocompleteServerIP)
	assert.Equal(t, []string{"~/envs", "/opt/conda/envs"}, s.VirtualenvPaths)
	assert.True(t, s.UseWrapped)
	assert.Equal(t, map[string]string{"PY_VERSION": "py3"}, s.DefaultExtendEnv)
	assert.Equal(t, []string{"bash", "--login", "-c", "env"}, s.GetenvCommand)
	// Untouched keys keep their defaults.
	assert.Equal(t, "utf-8", s.Encoding)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
