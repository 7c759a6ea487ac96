// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cats command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/invowk/cats/internal/config"
	"github.com/invowk/cats/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs cats with the process arguments and exits with its status.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := execute(context.Background(), app, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Code.Validate() == nil && !exitErr.Code.IsSuccess() {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

func execute(ctx context.Context, app *App, args []string) error {
	root := newRootCommand(app)
	root.SetArgs(args)
	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	return fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			fmt.Fprintln(w, formatErrorForDisplay(err, app.debugging()))
		}),
		fang.WithoutManpage(),
		fang.WithoutCompletions(),
	)
}

func newRootCommand(app *App) *cobra.Command {
	var req runRequest

	cmd := &cobra.Command{
		Use:   "cats [options] [file ...]",
		Short: "Concatenate files to standard output, stripping BOMs and CRs",
		Long: TitleStyle.Render("cats") + SubtitleStyle.Render(" - concatenate files, stripping BOMs and CRs") + `

cats copies each file to standard output, dropping a leading byte-order mark
and every carriage return. UTF-16 files (marked FF FE or FE FF) are converted
to UTF-8. With no file, or when a file is -, standard input is read.

` + SubtitleStyle.Render("Examples:") + `
  ` + CmdStyle.Render("cats notes.txt") + `          Print notes.txt with LF line endings
  ` + CmdStyle.Render("cats -ns a.txt b.txt") + `    Number lines across both files, dropping blank lines
  ` + CmdStyle.Render("cats -o *.txt") + `           Rewrite each file in place
  ` + CmdStyle.Render("some-tool | cats -A") + `     Show control characters in piped output`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Args = args
			return app.run(cmd.Context(), req)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&req.Flags.Verbose, "verbose", "v", false, "print a summary of each file to standard error")
	flags.BoolVarP(&req.Flags.LineNumbers, "number", "n", false, "number output lines")
	flags.BoolVarP(&req.Flags.ShowControl, "show-all", "A", false, "show control characters as ^X and line ends as $")
	flags.BoolVarP(&req.Flags.SuppressBlank, "squeeze-blank", "s", false, "suppress all blank lines")
	flags.BoolVarP(&req.Flags.Unbuffered, "unbuffered", "u", false, "flush output after every line")
	flags.BoolVarP(&req.Flags.Overwrite, "overwrite", "o", false, "rewrite each file in place")
	flags.StringVar(&req.ConfigPath, "config", "", "config file (default is <user config dir>/"+config.AppName+"/"+config.ConfigFileName+"."+config.ConfigFileExt+")")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return issue.NewErrorContext().
			WithSuggestion("Try 'cats --help'.").
			Wrap(err).
			BuildError(issue.KindUsage)
	})

	return cmd
}

// formatErrorForDisplay renders err as "cats: <message>" with any hint lines
// styled underneath. In verbose mode the full error chain is included.
func formatErrorForDisplay(err error, verboseMode bool) string {
	msg := err.Error()
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		msg = ae.Format(verboseMode)
	}

	lines := strings.Split(msg, "\n")
	lines[0] = config.AppName + ": " + lines[0]
	for i := 1; i < len(lines); i++ {
		lines[i] = SubtitleStyle.Render(lines[i])
	}
	return strings.Join(lines, "\n")
}
