package repl

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/replkit/replkit/internal/config"
	"github.com/replkit/replkit/internal/logging"
	"github.com/replkit/replkit/internal/monitoring"
)

// Environment maps variable names to values. Ordering is irrelevant; key
// case sensitivity follows the platform.
type Environment map[string]string

// EnvironFromOS snapshots the current process environment.
func EnvironFromOS() Environment {
	env := make(Environment)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return env
}

// Clone returns a copy of the environment. Cloning nil yields nil.
func (e Environment) Clone() Environment {
	if e == nil {
		return nil
	}
	out := make(Environment, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Slice renders the environment as sorted KEY=VALUE pairs for exec.Cmd.
func (e Environment) Slice() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Interpolate resolves {KEY} placeholders in each template value against
// env. A single pass: templates see env as it was on entry, never each
// other's results. Unknown keys are left as literal placeholders.
func Interpolate(env Environment, templates map[string]string) map[string]string {
	out := make(map[string]string, len(templates))
	for key, tpl := range templates {
		out[key] = placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
			if v, ok := env[m[1:len(m)-1]]; ok {
				return v
			}
			return m
		})
	}
	return out
}

// Encoder re-encodes environment entries into a configured byte encoding.
// The zero-config "utf-8" encoder only validates.
type Encoder struct {
	name string
	enc  encoding.Encoding // nil means UTF-8 passthrough
}

// NewEncoder resolves an encoding by IANA name.
func NewEncoder(name string) (*Encoder, error) {
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return &Encoder{name: "utf-8"}, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return &Encoder{name: name, enc: enc}, nil
}

// Encode converts s into the target encoding, erroring on unrepresentable
// content.
func (e *Encoder) Encode(s string) (string, error) {
	if e.enc == nil {
		if !utf8.ValidString(s) {
			return "", fmt.Errorf("invalid UTF-8 in %q", s)
		}
		return s, nil
	}
	return e.enc.NewEncoder().String(s)
}

// Builder produces the final child-process environment from a base
// environment, configured default extensions, and caller extensions.
type Builder struct {
	settings *config.Settings
	log      *logging.Logger
	metrics  *monitoring.Metrics
	runner   Runner
	enc      *Encoder
}

// NewBuilder creates a Builder from settings. The settings' encoding name
// must resolve.
func NewBuilder(settings *config.Settings, log *logging.Logger) (*Builder, error) {
	if settings == nil {
		settings = config.Default()
	}
	if log == nil {
		log = logging.NewNop()
	}
	enc, err := NewEncoder(settings.Encoding)
	if err != nil {
		return nil, err
	}
	return &Builder{settings: settings, log: log, runner: execRunner{}, enc: enc}, nil
}

// Build composes the child environment. A nil base is acquired via the
// login-shell strategy (or the inherited environment). Default extensions
// apply first, then caller extensions; each phase is interpolated against
// the environment accumulated so far. Every entry is then re-encoded, with
// unencodable pairs dropped rather than failing the build. The two
// autocomplete address variables are always injected; pass an empty acPort
// when the service is disabled.
func (b *Builder) Build(base Environment, extend map[string]string, acPort string) Environment {
	env := base.Clone()
	if env == nil {
		env = b.Getenv()
	}
	if len(b.settings.DefaultExtendEnv) > 0 {
		mergeInto(env, Interpolate(env, b.settings.DefaultExtendEnv))
	}
	if len(extend) > 0 {
		mergeInto(env, Interpolate(env, extend))
	}

	env = b.encodeAll(env)

	if acPort == "" {
		acPort = acPortDisabled
	}
	env[EnvAutocompletePort] = acPort
	env[EnvAutocompleteIP] = b.settings.AutocompleteServerIP
	return env
}

// encodeAll re-encodes every pair, dropping the ones the target encoding
// cannot represent.
func (b *Builder) encodeAll(env Environment) Environment {
	out := make(Environment, len(env))
	for k, v := range env {
		ek, kerr := b.enc.Encode(k)
		ev, verr := b.enc.Encode(v)
		if kerr != nil || verr != nil {
			b.log.Debug("dropping environment entry the target encoding cannot represent",
				zap.String("key", k), zap.String("encoding", b.enc.name))
			if b.metrics != nil {
				b.metrics.DroppedPairsTotal.Inc()
			}
			continue
		}
		out[ek] = ev
	}
	return out
}

func mergeInto(dst Environment, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
