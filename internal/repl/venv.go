package repl

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/replkit/replkit/internal/config"
	"github.com/replkit/replkit/internal/logging"
	"github.com/replkit/replkit/internal/monitoring"
	"github.com/replkit/replkit/internal/shared/paths"
)

// SourceCache holds environment snapshots captured by sourcing activation
// scripts, keyed by environment tag. It is created once per host process
// and shared by every resolver; entries never expire except through an
// explicit force re-source. The mutex also serializes first-time sourcing
// so concurrent launches cannot double-invoke the shell.
type SourceCache struct {
	mu   sync.Mutex
	envs map[string]map[string]string
}

// NewSourceCache creates an empty cache.
func NewSourceCache() *SourceCache {
	return &SourceCache{envs: make(map[string]map[string]string)}
}

// ResolveOptions selects the virtual environment to activate.
type ResolveOptions struct {
	// VenvPaths are the roots scanned for environments. Empty means nothing
	// is discovered and only pass-through tags resolve.
	VenvPaths []string

	// Tag is the environment to activate, by directory basename.
	Tag string

	// UseWrapped prefers the wrapper-directory strategy when the tag has a
	// wrapper directory on disk.
	UseWrapped bool

	// ForceSource re-sources activation scripts even on a cache hit.
	ForceSource bool
}

// Resolver discovers virtual environments on disk and augments a base
// environment with the delta needed to activate one.
type Resolver struct {
	settings *config.Settings
	cache    *SourceCache
	runner   Runner
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// NewResolver creates a resolver sharing the given cache.
func NewResolver(settings *config.Settings, cache *SourceCache, log *logging.Logger) *Resolver {
	if settings == nil {
		settings = config.Default()
	}
	if cache == nil {
		cache = NewSourceCache()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Resolver{settings: settings, cache: cache, runner: execRunner{}, log: log}
}

// isBaseTag reports tags that never receive virtualenv treatment.
func isBaseTag(tag string) bool {
	return tag == "root" || tag == "base"
}

// Resolve returns base augmented for the requested tag. Strategy order:
// wrapper directory on PATH when available (cheap, no subprocess), then
// pass-through for base tags, then sourcing with the process-wide cache.
// An undiscovered non-base tag is a ResolutionError.
func (r *Resolver) Resolve(base Environment, opts ResolveOptions) (Environment, error) {
	venvs := r.scan(opts.VenvPaths)
	env := base.Clone()
	if env == nil {
		env = make(Environment)
	}

	if opts.UseWrapped {
		if binDir, ok := venvs[opts.Tag]; ok {
			wrapper := filepath.Join(binDir, "wrappers", "conda")
			if info, err := os.Stat(wrapper); err == nil && info.IsDir() {
				env["PATH"] = prependPath(env["PATH"], wrapper, binDir)
				r.log.Debug("activating via wrapper directory",
					zap.String("tag", opts.Tag), zap.String("wrapper", wrapper))
				return env, nil
			}
		}
	}

	if isBaseTag(opts.Tag) {
		return env, nil
	}

	if _, ok := venvs[opts.Tag]; !ok {
		known := make([]string, 0, len(venvs))
		for tag := range venvs {
			known = append(known, tag)
		}
		sort.Strings(known)
		return nil, &ResolutionError{Tag: opts.Tag, Known: known}
	}

	delta, err := r.sourced(venvs, opts)
	if err != nil {
		return nil, err
	}
	mergeInto(env, Interpolate(env, delta))
	return env, nil
}

// scan maps environment tags (directory basenames) to their binary
// directories. Later roots overwrite earlier ones on basename collision;
// last root wins.
func (r *Resolver) scan(venvPaths []string) map[string]string {
	venvs := make(map[string]string)
	for _, root := range venvPaths {
		pattern := filepath.Join(paths.ExpandUser(root), "*", paths.BinDirName())
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			r.log.Warn("virtualenv scan failed", zap.String("root", root), zap.Error(err))
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.IsDir() {
				continue
			}
			venvs[filepath.Base(filepath.Dir(m))] = m
		}
	}
	return venvs
}

// sourced returns the cached activation delta for the requested tag,
// batch-sourcing every discovered tag on a miss or a forced refresh. One
// pass fills the cache for all tags so later launches skip the shell
// entirely.
func (r *Resolver) sourced(venvs map[string]string, opts ResolveOptions) (map[string]string, error) {
	r.cache.mu.Lock()
	defer r.cache.mu.Unlock()

	if delta, ok := r.cache.envs[opts.Tag]; ok && !opts.ForceSource {
		return delta, nil
	}

	for tag, binDir := range venvs {
		script := filepath.Join(r.activateDir(binDir, opts.VenvPaths), "activate")
		out, err := r.runner.Output("bash", "--login", "-c",
			fmt.Sprintf(". %s %s; env", script, tag))
		if err != nil {
			return nil, fmt.Errorf("sourcing %s for %q failed: %w", script, tag, err)
		}
		if r.metrics != nil {
			r.metrics.SourcingTotal.Inc()
		}
		r.cache.envs[tag] = ParseEnvDump(out)
		r.log.Debug("sourced activation environment", zap.String("tag", tag))
	}

	return r.cache.envs[opts.Tag], nil
}

// activateDir locates the activation script: inside each environment's bin
// directory for conda 4.3-era layouts, in the installation root's bin
// directory otherwise.
func (r *Resolver) activateDir(binDir string, venvPaths []string) string {
	if r.settings.CondaMinor == 3 || len(venvPaths) == 0 {
		return binDir
	}
	return filepath.Join(filepath.Dir(paths.ExpandUser(venvPaths[0])), "bin")
}

// prependPath puts dirs in front of an existing PATH value, in order.
func prependPath(path string, dirs ...string) string {
	if path == "" {
		return strings.Join(dirs, string(os.PathListSeparator))
	}
	return strings.Join(append(dirs, path), string(os.PathListSeparator))
}
