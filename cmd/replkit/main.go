// Command replkit launches an interactive REPL subprocess and bridges its
// I/O to the terminal: stdin goes to the child, the child's merged output
// comes back on stdout. SIGINT is relayed to the child; SIGTERM kills the
// whole chain.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/replkit/replkit/internal/config"
	"github.com/replkit/replkit/internal/logging"
	"github.com/replkit/replkit/internal/monitoring"
	"github.com/replkit/replkit/internal/repl"
)

func main() {
	settingsPath := flag.String("settings", "", "YAML settings file")
	cwd := flag.String("cwd", "", "working directory for the child process")
	venv := flag.String("venv", "", "virtual environment tag to activate before launch")
	usePTY := flag.Bool("pty", false, "launch under a pseudo-terminal")
	filterWarns := flag.Bool("filter-warnings", false, "pipe output through the warning-filter stage")
	softQuit := flag.String("soft-quit", "", "payload written to the child before a forced kill")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: replkit [flags] command [args...]")
		os.Exit(2)
	}

	settings := loadSettings(*settingsPath)
	logger := buildLogger(settings)
	defer logger.Sync()

	launcher, err := repl.NewLauncher(settings, logger, repl.WithMetrics(monitoring.NewMetrics()))
	if err != nil {
		logger.Fatal("failed to initialize launcher", zap.Error(err))
	}

	opts := repl.Options{
		Cmd:            flag.Args(),
		Cwd:            *cwd,
		SoftQuit:       *softQuit,
		FilterWarnings: *filterWarns,
		UsePTY:         *usePTY,
	}

	var sub *repl.Subprocess
	if *venv != "" {
		opts.ExtendEnv = map[string]string{"PY_VERSION": *venv}
		sub, err = launcher.LaunchVenv(opts)
	} else {
		sub, err = launcher.Launch(opts)
	}
	if err != nil {
		logger.Fatal("launch failed", zap.Error(err))
	}

	// Relay terminal signals to the child.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range sigChan {
			if sig == syscall.SIGTERM {
				sub.Kill()
				return
			}
			sub.SendSignal(syscall.SIGINT)
		}
	}()

	// Terminal input to the child.
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if werr := sub.WriteBytes(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	// Child output to the terminal until the stream closes.
	for {
		out, err := sub.ReadBytes()
		if err != nil {
			logger.Warn("read failed", zap.Error(err))
			break
		}
		if len(out) == 0 {
			break
		}
		os.Stdout.Write(out)
	}

	sub.Kill()
	logger.Info("session closed", zap.String("name", sub.Name()))
}

func loadSettings(path string) *config.Settings {
	if path == "" {
		return config.LoadOrDefault()
	}
	settings, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replkit: %v\n", err)
		os.Exit(1)
	}
	return settings
}

func buildLogger(settings *config.Settings) *logging.Logger {
	cfg := logging.Config{
		Level:       settings.Logging.Level,
		Development: settings.Logging.Development,
		OutputPaths: []string{"stderr"},
	}
	if settings.Debug {
		cfg = logging.DevelopmentConfig()
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return logging.NewDefault()
	}
	return logger
}
