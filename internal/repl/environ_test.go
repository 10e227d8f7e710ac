package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replkit/replkit/internal/config"
	"github.com/replkit/replkit/internal/logging"
)

func newTestBuilder(t *testing.T, settings *config.Settings) *Builder {
	t.Helper()
	b, err := NewBuilder(settings, logging.NewNop())
	require.NoError(t, err)
	return b
}

func TestInterpolate(t *testing.T) {
	env := Environment{"NAME": "sam", "HOME": "/home/sam"}

	out := Interpolate(env, map[string]string{
		"GREETING": "hi {NAME}",
		"WORKDIR":  "{HOME}/work",
	})

	assert.Equal(t, "hi sam", out["GREETING"])
	assert.Equal(t, "/home/sam/work", out["WORKDIR"])
}

func TestInterpolateIsPure(t *testing.T) {
	env := Environment{"A": "1"}
	templates := map[string]string{"B": "{A}{A}"}

	first := Interpolate(env, templates)
	second := Interpolate(env, templates)

	assert.Equal(t, first, second)
	// Inputs are untouched.
	assert.Equal(t, Environment{"A": "1"}, env)
	assert.Equal(t, map[string]string{"B": "{A}{A}"}, templates)
}

func TestInterpolateUnknownKeyStaysLiteral(t *testing.T) {
	out := Interpolate(Environment{}, map[string]string{"X": "see {MISSING}"})

	assert.Equal(t, "see {MISSING}", out["X"])
}

func TestInterpolateSinglePass(t *testing.T) {
	// Templates never see each other's results.
	env := Environment{"A": "1"}
	out := Interpolate(env, map[string]string{
		"B": "{A}",
		"C": "{B}",
	})

	assert.Equal(t, "1", out["B"])
	assert.Equal(t, "{B}", out["C"])
}

func TestBuildRoundTrip(t *testing.T) {
	b := newTestBuilder(t, config.Default())

	env := b.Build(Environment{"NAME": "sam"}, map[string]string{"GREETING": "hi {NAME}"}, "")

	assert.Equal(t, "sam", env["NAME"])
	assert.Equal(t, "hi sam", env["GREETING"])
	assert.Equal(t, "None", env[EnvAutocompletePort])
	assert.Equal(t, "127.0.0.1", env[EnvAutocompleteIP])
}

func TestBuildDefaultExtendAppliesFirst(t *testing.T) {
	settings := config.Default()
	settings.DefaultExtendEnv = map[string]string{"STAGE": "default", "ROOT": "/opt"}
	b := newTestBuilder(t, settings)

	env := b.Build(Environment{}, map[string]string{
		"STAGE": "caller",      // caller phase overrides default phase
		"SUB":   "{ROOT}/data", // and sees its results
	}, "")

	assert.Equal(t, "caller", env["STAGE"])
	assert.Equal(t, "/opt/data", env["SUB"])
}

func TestBuildInjectsAutocompletePort(t *testing.T) {
	b := newTestBuilder(t, config.Default())

	env := b.Build(Environment{}, nil, "4242")

	assert.Equal(t, "4242", env[EnvAutocompletePort])
}

func TestBuildDropsUnencodablePairs(t *testing.T) {
	settings := config.Default()
	settings.Encoding = "ISO-8859-1"
	b := newTestBuilder(t, settings)

	env := b.Build(Environment{
		"PLAIN": "value",
		"BAD":   "日本語",
	}, nil, "")

	_, ok := env["PLAIN"]
	assert.True(t, ok, "encodable pair must survive")
	_, ok = env["BAD"]
	assert.False(t, ok, "unencodable pair must be dropped, not fail the build")
}

func TestNewEncoderUnknownName(t *testing.T) {
	_, err := NewEncoder("no-such-charset")
	assert.Error(t, err)
}

func TestEnvironmentSlice(t *testing.T) {
	env := Environment{"B": "2", "A": "1"}

	assert.Equal(t, []string{"A=1", "B=2"}, env.Slice())
}

func TestEnvironmentCloneNil(t *testing.T) {
	var env Environment
	assert.Nil(t, env.Clone())
}
