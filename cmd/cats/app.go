// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/invowk/cats/internal/config"
	"github.com/invowk/cats/internal/driver"
	"github.com/invowk/cats/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

type (
	// App wires the CLI to its services. It is the composition root for the
	// CLI layer; the root command delegates all work through it.
	App struct {
		Config ConfigProvider
		Fs     afero.Fs
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
		logger *log.Logger

		isTerminal func(io.Writer) bool
		exit       func(code int)
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Fs     afero.Fs
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// IsTerminal reports whether standard output is an interactive terminal.
		IsTerminal func(io.Writer) bool
		// Exit ends the process after an interrupt.
		Exit func(code int)
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// runRequest is everything the root command parsed from the command line.
	runRequest struct {
		Flags      config.Flags
		ConfigPath string
		Args       []string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.IsTerminal == nil {
		deps.IsTerminal = isTerminal
	}
	if deps.Exit == nil {
		deps.Exit = os.Exit
	}

	return &App{
		Config:     deps.Config,
		Fs:         deps.Fs,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
		logger:     log.NewWithOptions(deps.Stderr, log.Options{Prefix: config.AppName}),
		isTerminal: deps.IsTerminal,
		exit:       deps.Exit,
	}
}

// run loads configuration, applies the command-line toggles and drives the
// inputs. An interrupt while inputs are being processed flushes what was
// written so far and exits with status 0.
func (a *App) run(ctx context.Context, req runRequest) error {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(req.ConfigPath)})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	merged := cfg.WithFlags(req.Flags)
	a.setLogLevel(merged.Log.Level)

	drv, err := driver.New(driver.Options{
		Config:           merged,
		Fs:               a.Fs,
		Stdin:            a.stdin,
		Stdout:           a.stdout,
		Stderr:           a.stderr,
		Logger:           a.logger,
		StdoutIsTerminal: a.isTerminal(a.stdout),
	})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	done := make(chan struct{})
	handled := make(chan struct{})
	go a.watchInterrupt(ctx, drv, done, handled)

	err = drv.Run(ctx, req.Args)
	if errors.Is(err, context.Canceled) {
		// The watcher owns the exit from here on.
		<-handled
		return nil
	}
	close(done)
	<-handled

	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}

// watchInterrupt waits for ctx to be canceled by an interrupt while the run is
// still in progress. done is closed once the run has finished on its own.
func (a *App) watchInterrupt(ctx context.Context, drv *driver.Driver, done <-chan struct{}, handled chan<- struct{}) {
	defer close(handled)

	select {
	case <-done:
		return
	case <-ctx.Done():
	}
	select {
	case <-done:
		return
	default:
	}

	signal.Ignore(os.Interrupt)
	a.logger.Debug("interrupted")
	drv.Interrupt()
	a.exit(0)
}

func (a *App) setLogLevel(level config.LogLevel) {
	lvl, err := log.ParseLevel(level.String())
	if err != nil {
		lvl = log.WarnLevel
	}
	a.logger.SetLevel(lvl)
}

// debugging reports whether diagnostics should include the full error chain.
func (a *App) debugging() bool {
	return a.logger.GetLevel() <= log.DebugLevel
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
