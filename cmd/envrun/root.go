// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/envrun/envrun/internal/issue"
	"github.com/envrun/envrun/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	configPath     string
	descriptorPath string
	verbose        bool
}

// NewRootCommand builds the envrun command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	root := &cobra.Command{
		Use:   "envrun",
		Short: "Run tox-style test environments",
		Long: TitleStyle.Render("envrun") + SubtitleStyle.Render(" - run tox-style test environments") + `

envrun reads a tox.toml, tox.ini or setup.cfg descriptor, resolves every
environment's dependencies, variables and commands, and runs them in order.

` + SubtitleStyle.Render("Examples:") + `
  envrun list                       List the defined environments
  envrun run                        Run the default environments
  envrun run -e py312,lint          Run two environments
  envrun run -e py312 -- -k smoke   Pass extra arguments to {posargs}
  envrun show -e lint --format yaml Show a resolved environment`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			app.init(cmd.Context(), flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/envrun/config.cue)")
	pf.StringVarP(&flags.descriptorPath, "descriptor", "c", "", "descriptor file (default: discover tox.toml, tox.ini, setup.cfg)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newRunCommand(app, flags),
		newListCommand(app, flags),
		newShowCommand(app, flags),
		newValidateCommand(app, flags),
		newConfigCommand(app),
	)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)
	root.SetIn(app.stdin)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Run executes the command tree with args and returns the process exit code.
func Run(ctx context.Context, app *App, args []string) types.ExitCode {
	root := NewRootCommand(app)
	root.SetArgs(args)

	err := fang.Execute(ctx, root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			handleError(w, styles, err, app.verbose)
		}),
	)
	return exitCodeFor(err)
}

// Execute runs envrun with the process arguments and exits.
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, formatErrorForDisplay(err, false))
		os.Exit(int(types.ExitFailure))
	}
	os.Exit(int(Run(context.Background(), app, os.Args[1:])))
}

// handleError renders a command error. Run failures that already printed a
// summary carry no error and print nothing more. Domain errors get the styled
// message; flag and usage errors use fang's default rendering.
func handleError(w io.Writer, styles fang.Styles, err error, verbose bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(w, svcErr, verbose)
		return
	}
	if svcErr = classifyError(err, verbose); svcErr.IssueID != 0 || isUsageError(err) {
		renderServiceError(w, svcErr, verbose)
		return
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		renderServiceError(w, svcErr, verbose)
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

func exitCodeFor(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}
