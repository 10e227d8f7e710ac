package repl

import (
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// Runner abstracts shell invocation so tests can count and fake sourcing
// and getenv runs without spawning anything.
type Runner interface {
	Output(name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// ParseEnvDump parses `env`-style KEY=VALUE output into a map. A line
// without '=' is folded into the previous key's value with a newline, which
// is how shells dump variables that themselves contain newlines. Leading
// lines with no preceding key are discarded.
func ParseEnvDump(data []byte) map[string]string {
	env := make(map[string]string)
	var lastKey string
	lines := strings.Split(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for _, line := range lines {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			if lastKey == "" {
				continue
			}
			env[lastKey] += "\n" + line
			continue
		}
		env[k] = v
		lastKey = k
	}
	return env
}

// Getenv acquires the base environment. On POSIX with a configured getenv
// command it captures a login-shell environment dump; on failure it logs
// and falls back to the inherited environment. The failure never reaches
// the caller.
func (b *Builder) Getenv() Environment {
	if len(b.settings.GetenvCommand) > 0 && runtime.GOOS != "windows" {
		cmd := b.settings.GetenvCommand
		out, err := b.runner.Output(cmd[0], cmd[1:]...)
		if err == nil {
			return Environment(ParseEnvDump(out))
		}
		b.log.Warn("login-shell environment query failed, falling back to inherited environment",
			zap.Strings("getenv_command", cmd), zap.Error(err))
	}
	return EnvironFromOS()
}
