package repl

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/replkit/replkit/internal/config"
)

// fakeRunner records invocations and plays back canned output.
type fakeRunner struct {
	calls  int
	argvs  [][]string
	output []byte
	err    error
}

func (f *fakeRunner) Output(name string, args ...string) ([]byte, error) {
	f.calls++
	f.argvs = append(f.argvs, append([]string{name}, args...))
	return f.output, f.err
}

func TestParseEnvDump(t *testing.T) {
	env := ParseEnvDump([]byte("FOO=bar\nbaz\nQUX=1\n"))

	assert.Equal(t, map[string]string{
		"FOO": "bar\nbaz",
		"QUX": "1",
	}, env)
}

func TestParseEnvDumpLeadingContinuationDiscarded(t *testing.T) {
	env := ParseEnvDump([]byte("stray\nA=1"))

	assert.Equal(t, map[string]string{"A": "1"}, env)
}

func TestParseEnvDumpEmpty(t *testing.T) {
	assert.Empty(t, ParseEnvDump(nil))
}

func TestGetenvUsesLoginShellDump(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("login-shell getenv is POSIX only")
	}
	settings := config.Default()
	settings.GetenvCommand = []string{"loginshell", "-c", "env"}
	b := newTestBuilder(t, settings)
	runner := &fakeRunner{output: []byte("PATH=/custom/bin\nSHELL=/bin/bash\n")}
	b.runner = runner

	env := b.Getenv()

	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "/custom/bin", env["PATH"])
	assert.Equal(t, "/bin/bash", env["SHELL"])
}

func TestGetenvFallsBackToInheritedEnvironment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("login-shell getenv is POSIX only")
	}
	settings := config.Default()
	settings.GetenvCommand = []string{"loginshell"}
	b := newTestBuilder(t, settings)
	b.runner = &fakeRunner{err: errors.New("boom")}

	env := b.Getenv()

	// The failure is absorbed; the inherited environment comes back.
	assert.NotEmpty(t, env)
	assert.Contains(t, env, "PATH")
}

func TestGetenvWithoutCommandUsesInheritedEnvironment(t *testing.T) {
	b := newTestBuilder(t, config.Default())
	runner := &fakeRunner{}
	b.runner = runner

	env := b.Getenv()

	assert.Zero(t, runner.calls)
	assert.NotEmpty(t, env)
}
