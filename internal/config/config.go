package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds every tunable the REPL core reads. Values come from three
// layers, weakest first: struct defaults, REPLKIT_* environment variables,
// and an optional YAML settings file (the file wins, matching how editor
// settings files override ambient configuration).
type Settings struct {
	// AutocompleteServerIP is the address injected into the child process
	// environment so it can reach back to the autocomplete service.
	AutocompleteServerIP string `envconfig:"AUTOCOMPLETE_SERVER_IP" yaml:"autocomplete_server_ip" default:"127.0.0.1"`

	// GetenvCommand, when set on POSIX, is run to capture a login-shell
	// environment dump (e.g. ["bash", "--login", "-c", "env"]). Empty means
	// the inherited process environment is used as-is.
	GetenvCommand []string `envconfig:"GETENV_COMMAND" yaml:"getenv_command"`

	// DefaultExtendEnv is applied to every launch before caller-supplied
	// extensions. Values may reference existing keys as {KEY}.
	DefaultExtendEnv map[string]string `envconfig:"DEFAULT_EXTEND_ENV" yaml:"default_extend_env"`

	// VirtualenvPaths are the roots scanned for virtual environments.
	VirtualenvPaths []string `envconfig:"VIRTUALENV_PATHS" yaml:"python_virtualenv_paths"`

	// UseWrapped prefers a precomputed wrapper directory over shell
	// activation when one exists for the requested environment.
	UseWrapped bool `envconfig:"USE_WRAPPED" yaml:"use_wrapped"`

	// ForceSource re-sources activation scripts even when a cached
	// environment snapshot exists.
	ForceSource bool `envconfig:"FORCE_SOURCE" yaml:"force_source"`

	// CondaMinor selects where activation scripts live: 3 means inside each
	// environment's bin directory, anything else means the installation
	// root's bin directory.
	CondaMinor int `envconfig:"CONDA_MINOR" yaml:"conda_minor" default:"4"`

	// FilterCommand is the warning-filter stage spawned between the primary
	// process and the reader when filtering is requested.
	FilterCommand []string `envconfig:"FILTER_COMMAND" yaml:"filter_command"`

	// Encoding names the byte encoding for child environment entries.
	Encoding string `envconfig:"ENCODING" yaml:"encoding" default:"utf-8"`

	Debug bool `envconfig:"DEBUG" yaml:"debug"`

	Logging LogConfig `yaml:"logging"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" default:"info"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development"`
}

// Load reads settings from REPLKIT_* environment variables on top of the
// struct defaults.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("replkit", &s); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if s.FilterCommand == nil {
		s.FilterCommand = defaultFilterCommand()
	}
	return &s, nil
}

// LoadFile loads settings from the environment, then overlays the YAML
// settings file at path.
func LoadFile(path string) (*Settings, error) {
	s, err := Load()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return s, nil
}

// LoadOrDefault loads settings from the environment or returns defaults.
func LoadOrDefault() *Settings {
	s, err := Load()
	if err != nil {
		return Default()
	}
	return s
}

// Default returns default settings.
func Default() *Settings {
	return &Settings{
		AutocompleteServerIP: "127.0.0.1",
		CondaMinor:           4,
		Encoding:             "utf-8",
		FilterCommand:        defaultFilterCommand(),
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// defaultFilterCommand drops the GTK warning chatter some toolkits print to
// stderr the moment a GUI-linked interpreter starts.
func defaultFilterCommand() []string {
	return []string{"grep", "-v", "--line-buffered",
		"-e", "Gtk-WARNING", "-e", "Gtk-Message", "-e", "GLib-GIO-WARNING"}
}
