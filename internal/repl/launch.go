package repl

import (
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"

	"github.com/creack/pty"
	"go.uber.org/zap"

	"github.com/replkit/replkit/internal/monitoring"
)

// launchSpec is the fully resolved input to a spawn: final environment,
// argv, and the shape of the process chain.
type launchSpec struct {
	cmd    []string
	env    Environment
	cwd    string
	filter []string // non-empty chains a filter stage after the primary
	usePTY bool
	onExit func() // invoked when the primary process is reaped
}

// process owns one OS process and tracks its exit.
type process struct {
	cmd    *exec.Cmd
	exited atomic.Bool
}

// newProcess wraps a started command and reaps it in the background.
func newProcess(cmd *exec.Cmd, onExit func()) *process {
	p := &process{cmd: cmd}
	go func() {
		_ = cmd.Wait()
		p.exited.Store(true)
		if onExit != nil {
			onExit()
		}
	}()
	return p
}

func (p *process) alive() bool {
	return !p.exited.Load()
}

func (p *process) kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill() // already-exited processes are fine
	}
}

func (p *process) signal(sig os.Signal) error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Signal(sig)
}

// chain is the process pipeline: either the primary alone (filter nil) or
// primary piped into a filter stage whose output is the visible stream.
// Lifecycle logic is written once against this shape for both modes.
type chain struct {
	primary *process
	filter  *process
	stdin   *os.File // primary's input; the ptmx in PTY mode
	out     *os.File // externally visible output; the ptmx in PTY mode
	mode    string
}

// alive reports liveness of the whole pipeline.
func (c *chain) alive() bool {
	return c.primary.alive() && (c.filter == nil || c.filter.alive())
}

// writeInput writes to the primary's input. The pipe is an unbuffered
// os.File, so the child observes the bytes immediately.
func (c *chain) writeInput(p []byte) error {
	_, err := c.stdin.Write(p)
	return err
}

// spawn starts the primary process and, when requested, the filter stage.
// The visible output descriptor is marked non-blocking where the platform
// supports it.
func (l *Launcher) spawn(spec launchSpec) (*chain, error) {
	argv := resolveCommand(spec.cmd, spec.env)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = spec.env.Slice()
	cmd.Dir = existingDir(spec.cwd)
	applyStartupAttrs(cmd)

	if spec.usePTY {
		ptmx, err := pty.Start(cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to start %s under a pty: %w", argv[0], err)
		}
		c := &chain{
			primary: newProcess(cmd, spec.onExit),
			stdin:   ptmx,
			out:     ptmx,
			mode:    monitoring.ModePTY,
		}
		l.markNonblocking(c.out)
		return c, nil
	}

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		stdinR.Close()
		stdinW.Close()
		return nil, err
	}
	cmd.Stdin = stdinR
	cmd.Stdout = outW
	cmd.Stderr = outW // merged with stdout

	if err := cmd.Start(); err != nil {
		stdinR.Close()
		stdinW.Close()
		outR.Close()
		outW.Close()
		return nil, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	stdinR.Close()
	outW.Close()

	c := &chain{
		primary: newProcess(cmd, spec.onExit),
		stdin:   stdinW,
		out:     outR,
		mode:    monitoring.ModeDirect,
	}

	if len(spec.filter) > 0 {
		if err := l.chainFilter(c, spec, outR); err != nil {
			c.primary.kill()
			stdinW.Close()
			outR.Close()
			return nil, err
		}
	}

	l.markNonblocking(c.out)
	return c, nil
}

// chainFilter starts the filter stage reading the primary's output; its own
// output becomes the externally visible stream.
func (l *Launcher) chainFilter(c *chain, spec launchSpec, primaryOut *os.File) error {
	fcmd := exec.Command(spec.filter[0], spec.filter[1:]...)
	fcmd.Env = spec.env.Slice()
	fcmd.Dir = existingDir(spec.cwd)
	applyStartupAttrs(fcmd)

	outR, outW, err := os.Pipe()
	if err != nil {
		return err
	}
	fcmd.Stdin = primaryOut
	fcmd.Stdout = outW
	fcmd.Stderr = outW

	if err := fcmd.Start(); err != nil {
		outR.Close()
		outW.Close()
		return fmt.Errorf("failed to start filter %s: %w", spec.filter[0], err)
	}
	primaryOut.Close()
	outW.Close()

	c.filter = newProcess(fcmd, nil)
	c.out = outR
	c.mode = monitoring.ModeFiltered
	return nil
}

func (l *Launcher) markNonblocking(f *os.File) {
	if err := setNonblock(f); err != nil {
		l.log.Warn("failed to mark output non-blocking", zap.Error(err))
	}
}

// existingDir returns dir only when it exists on disk; otherwise the child
// inherits the launcher's working directory.
func existingDir(dir string) string {
	if dir == "" {
		return ""
	}
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return ""
}
