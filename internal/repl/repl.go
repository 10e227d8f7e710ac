package repl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"

	"github.com/replkit/replkit/internal/config"
	"github.com/replkit/replkit/internal/logging"
	"github.com/replkit/replkit/internal/monitoring"
	"github.com/replkit/replkit/internal/shared/id"
)

// Options is the inbound launch surface.
type Options struct {
	// Cmd is the argv of the primary process. A first element of
	// UnsupportedCommand fails fast with UnsupportedError.
	Cmd []string

	// Env is an externally supplied base environment. Nil means the base is
	// acquired via the login-shell or inherited-environment strategy.
	Env Environment

	// Cwd is used only when the directory exists on disk.
	Cwd string

	// ExtendEnv templates extend the base environment; values may reference
	// existing keys as {KEY}.
	ExtendEnv map[string]string

	// SoftQuit is written to the child's input before a forced kill.
	SoftQuit string

	// Completer enables the autocomplete service when non-nil.
	Completer Completer

	// FilterWarnings pipes the primary's output through the configured
	// warning-filter stage. Ignored in PTY mode.
	FilterWarnings bool

	// UsePTY launches the child under a pseudo-terminal instead of plain
	// pipes. POSIX only.
	UsePTY bool

	// ExternalID, when set, becomes the subprocess display name.
	ExternalID string
}

// Launcher builds environments and spawns REPL subprocesses. One launcher
// serves many launches; the sourcing cache it holds is intentionally
// process-lived.
type Launcher struct {
	settings *config.Settings
	log      *logging.Logger
	metrics  *monitoring.Metrics
	runner   Runner
	cache    *SourceCache
	builder  *Builder
	resolver *Resolver
}

// LauncherOption customizes a Launcher.
type LauncherOption func(*Launcher)

// WithMetrics attaches a metrics collector.
func WithMetrics(m *monitoring.Metrics) LauncherOption {
	return func(l *Launcher) { l.metrics = m }
}

// WithRunner substitutes the shell runner. Tests use it as a spawn-count
// probe.
func WithRunner(r Runner) LauncherOption {
	return func(l *Launcher) { l.runner = r }
}

// WithSourceCache shares a sourcing cache across launchers.
func WithSourceCache(c *SourceCache) LauncherOption {
	return func(l *Launcher) { l.cache = c }
}

// NewLauncher creates a launcher. Errors only when the configured encoding
// name does not resolve.
func NewLauncher(settings *config.Settings, log *logging.Logger, opts ...LauncherOption) (*Launcher, error) {
	if settings == nil {
		settings = config.Default()
	}
	if log == nil {
		log = logging.NewNop()
	}
	l := &Launcher{
		settings: settings,
		log:      log.Named("repl"),
		runner:   execRunner{},
		cache:    NewSourceCache(),
	}
	for _, opt := range opts {
		opt(l)
	}

	enc, err := NewEncoder(settings.Encoding)
	if err != nil {
		return nil, err
	}
	l.builder = &Builder{settings: settings, log: l.log, metrics: l.metrics, runner: l.runner, enc: enc}
	l.resolver = &Resolver{settings: settings, cache: l.cache, runner: l.runner, log: l.log, metrics: l.metrics}
	return l, nil
}

// Launch builds the child environment and spawns the process chain.
func (l *Launcher) Launch(opts Options) (*Subprocess, error) {
	if len(opts.Cmd) == 0 {
		return nil, errors.New("empty command")
	}
	if opts.Cmd[0] == UnsupportedCommand {
		return nil, &UnsupportedError{Reasons: append([]string(nil), opts.Cmd[1:]...)}
	}

	acPort := ""
	if opts.Completer != nil {
		if err := opts.Completer.Start(); err != nil {
			return nil, fmt.Errorf("failed to start autocomplete service: %w", err)
		}
		if port, ok := opts.Completer.Port(); ok {
			acPort = strconv.Itoa(port)
		}
	}

	env := l.builder.Build(opts.Env, opts.ExtendEnv, acPort)

	sessID := id.NewSessionID()
	sub := &Subprocess{
		id:         sessID,
		cmd:        append([]string(nil), opts.Cmd...),
		externalID: opts.ExternalID,
		softQuit:   opts.SoftQuit,
		completer:  opts.Completer,
		log:        l.log.With(zap.String("session", sessID.String())),
		metrics:    l.metrics,
	}

	var filter []string
	if opts.FilterWarnings && !opts.UsePTY {
		filter = l.settings.FilterCommand
	}

	if l.metrics != nil {
		l.metrics.SessionsActive.Inc()
	}
	ch, err := l.spawn(launchSpec{
		cmd:    opts.Cmd,
		env:    env,
		cwd:    opts.Cwd,
		filter: filter,
		usePTY: opts.UsePTY,
		onExit: func() {
			if l.metrics != nil {
				l.metrics.SessionsActive.Dec()
			}
		},
	})
	if err != nil {
		if l.metrics != nil {
			l.metrics.SessionsActive.Dec()
		}
		return nil, err
	}
	sub.chain = ch

	if l.metrics != nil {
		l.metrics.SpawnsTotal.WithLabelValues(ch.mode).Inc()
	}
	sub.log.Info("launched", zap.Strings("cmd", opts.Cmd), zap.String("mode", ch.mode))
	return sub, nil
}

// LaunchVenv resolves the virtual environment named by the PY_VERSION
// extension (default "py3") before launching. The resolved environment
// replaces the base; extensions still apply on top of it.
func (l *Launcher) LaunchVenv(opts Options) (*Subprocess, error) {
	if opts.ExtendEnv == nil {
		opts.ExtendEnv = make(map[string]string)
	}
	if _, ok := opts.ExtendEnv["PY_VERSION"]; !ok {
		opts.ExtendEnv["PY_VERSION"] = "py3"
	}
	if _, ok := opts.ExtendEnv["PYTHONIOENCODING"]; !ok {
		opts.ExtendEnv["PYTHONIOENCODING"] = "utf-8"
	}

	base := opts.Env
	if base == nil {
		base = l.builder.Getenv()
	}
	resolved, err := l.resolver.Resolve(base, ResolveOptions{
		VenvPaths:   l.settings.VirtualenvPaths,
		Tag:         opts.ExtendEnv["PY_VERSION"],
		UseWrapped:  l.settings.UseWrapped,
		ForceSource: l.settings.ForceSource,
	})
	if err != nil {
		return nil, err
	}
	if l.settings.Debug {
		l.log.Debug("virtualenv resolved",
			zap.String("tag", opts.ExtendEnv["PY_VERSION"]),
			zap.String("path", resolved["PATH"]))
	}
	opts.Env = resolved
	return l.Launch(opts)
}

// Subprocess is one launched REPL: the process chain plus its lifecycle
// state. Exactly one reader and one writer are assumed.
type Subprocess struct {
	id         id.SessionID
	cmd        []string
	externalID string
	softQuit   string
	completer  Completer
	chain      *chain
	killed     atomic.Bool
	log        *logging.Logger
	metrics    *monitoring.Metrics
}

// ID returns the session identifier.
func (s *Subprocess) ID() id.SessionID {
	return s.id
}

// Name returns the external ID when one was supplied, otherwise the joined
// command line.
func (s *Subprocess) Name() string {
	if s.externalID != "" {
		return s.externalID
	}
	return strings.Join(s.cmd, " ")
}

// IsAlive reports whether the whole process chain is still running.
func (s *Subprocess) IsAlive() bool {
	return s.chain.alive()
}

// Killed reports whether a soft-quit/kill or terminate signal was issued.
// The flag is one-way.
func (s *Subprocess) Killed() bool {
	return s.killed.Load()
}

// ReadBytes blocks until output is available or the stream closes. An empty
// result means the stream closed; plain EOF is never an error.
func (s *Subprocess) ReadBytes() ([]byte, error) {
	data, err := s.chain.readOutput()
	if err != nil {
		return nil, err
	}
	if s.metrics != nil && len(data) > 0 {
		s.metrics.BytesRead.Add(float64(len(data)))
	}
	return data, nil
}

// WriteBytes writes input to the primary process with no buffering delay.
func (s *Subprocess) WriteBytes(p []byte) error {
	if err := s.chain.writeInput(p); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.BytesWritten.Add(float64(len(p)))
	}
	return nil
}

// Kill requests a graceful quit, then force-kills the chain. Idempotent:
// the killed flag is set once and a second call on an exited process is a
// no-op without error.
func (s *Subprocess) Kill() {
	if s.killed.CompareAndSwap(false, true) {
		if s.metrics != nil {
			s.metrics.KillsTotal.Inc()
		}
	}
	if s.softQuit != "" {
		// Best effort: the process may already be tearing down.
		_ = s.chain.writeInput([]byte(s.softQuit))
	}
	s.chain.primary.kill()
	if s.chain.filter != nil {
		s.chain.filter.kill()
	}
	s.log.Info("killed", zap.String("name", s.Name()))
}

// SendSignal relays sig to the chain while it is alive. The terminate
// signal also sets the killed flag so later lifecycle logic treats the
// process as intentionally stopped.
func (s *Subprocess) SendSignal(sig syscall.Signal) {
	if sig == syscall.SIGTERM {
		s.killed.Store(true)
	}
	if !s.IsAlive() {
		return
	}
	if err := s.chain.primary.signal(sig); err != nil {
		s.log.Warn("signal delivery failed", zap.String("signal", sig.String()), zap.Error(err))
	}
	if s.chain.filter != nil {
		_ = s.chain.filter.signal(sig)
	}
	if s.metrics != nil {
		s.metrics.SignalsTotal.WithLabelValues(sig.String()).Inc()
	}
}

// AutocompletePort returns the autocomplete service port, false when the
// service is disabled or unbound.
func (s *Subprocess) AutocompletePort() (int, bool) {
	if s.completer == nil {
		return 0, false
	}
	return s.completer.Port()
}

// AutocompleteAvailable reports whether the child attached to the service.
func (s *Subprocess) AutocompleteAvailable() bool {
	if s.completer == nil {
		return false
	}
	return s.completer.Connected()
}

// AutocompleteCompletions forwards a completion query to the service.
func (s *Subprocess) AutocompleteCompletions(req CompletionRequest) ([]Completion, error) {
	if s.completer == nil {
		return nil, errors.New("autocomplete service not enabled")
	}
	return s.completer.Complete(req)
}
