/*
Package repl manages an interactive child process (a REPL or shell) as a
long-lived, bidirectionally streamed subprocess.

The package covers four concerns:

  - Environment construction: a final key/value environment is composed from
    an inherited or login-shell-sourced base, template-interpolated
    extensions, and byte-encoding with a best-effort drop policy for entries
    the target encoding cannot represent.

  - Virtual environment activation: configured roots are scanned for
    environments, and the requested one is applied either through a
    precomputed wrapper directory on PATH (no subprocess) or by sourcing its
    activation script in a login shell and caching the resulting snapshot
    process-wide.

  - Process launching: the primary process is spawned with merged
    stdout/stderr, optionally chained through a warning-filter stage or run
    under a pseudo-terminal, with platform-specific executable lookup and
    startup flags isolated in build-tagged files.

  - I/O and lifecycle: non-blocking output draining (readiness multiplexing
    on POSIX, single-byte polling elsewhere), flushed input writes, liveness,
    a soft-quit-then-kill shutdown, and OS signal relay.

# Usage

	launcher, err := repl.NewLauncher(settings, logger)
	if err != nil {
		return err
	}

	sub, err := launcher.Launch(repl.Options{
		Cmd:      []string{"python", "-i"},
		SoftQuit: "exit()\n",
	})
	if err != nil {
		return err
	}

	for {
		out, err := sub.ReadBytes()
		if err != nil || len(out) == 0 {
			break // stream closed
		}
		// feed out to the host loop, write input with sub.WriteBytes
	}
	sub.Kill()

Exactly one reader and one writer per subprocess are assumed; the package
does not fan out pipe access. A blocked ReadBytes returns once the child is
killed and the stream closes.
*/
package repl
