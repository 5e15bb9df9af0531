// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/envrun/envrun/internal/dispatch"
	"github.com/envrun/envrun/internal/runtime"
)

// ErrUnexpectedArgs is returned when positional arguments are not preceded by --.
var ErrUnexpectedArgs = errors.New("unexpected arguments")

type runFlagValues struct {
	envs        []string
	dryRun      bool
	skipInstall bool
}

func newRunCommand(app *App, root *rootFlagValues) *cobra.Command {
	flags := &runFlagValues{}
	cmd := &cobra.Command{
		Use:   "run [flags] [-- posargs...]",
		Short: "Run environments",
		Long: `Run the selected environments in order and report a summary.

Without -e, the configured default_envs are run, then the descriptor's
env_list, then every defined environment. Arguments after -- replace
{posargs} in every command.`,
		Example: `  envrun run
  envrun run -e py312,lint
  envrun run -e 'py{311,312}' -- -k smoke
  envrun run --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			posargs, err := posArgs(cmd, args)
			if err != nil {
				return err
			}
			return runEnvironments(cmd.Context(), app, root, flags, posargs)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.envs, "env", "e", nil, "environments to run (repeatable, comma separated)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print commands instead of running them")
	cmd.Flags().BoolVar(&flags.skipInstall, "skip-install", false, "skip dependency installation")
	return cmd
}

// posArgs returns the arguments given after --.
func posArgs(cmd *cobra.Command, args []string) ([]string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w %q: pass extra command arguments after --", ErrUnexpectedArgs, args)
		}
		return nil, nil
	}
	if dash > 0 {
		return nil, fmt.Errorf("%w %q: pass extra command arguments after --", ErrUnexpectedArgs, args[:dash])
	}
	return args, nil
}

func runEnvironments(ctx context.Context, app *App, root *rootFlagValues, flags *runFlagValues, posargs []string) error {
	proj, err := app.loadProject(root)
	if err != nil {
		return err
	}

	launcher := app.Launcher
	if flags.dryRun {
		launcher = runtime.NewDryRunLauncher(app.stdout)
	}
	names := flags.envs
	if len(names) == 0 {
		names = app.defaultNames()
	}

	report, err := dispatch.New(proj.registry, launcher, app.logger).Run(ctx, dispatch.Options{
		Names:       names,
		PosArgs:     posargs,
		SkipInstall: flags.skipInstall,
		Resolve:     app.resolveOptions(),
		Environ:     app.environ(),
		Stdout:      app.stdout,
		Stderr:      app.stderr,
		Stdin:       app.stdin,
	})
	if err != nil {
		return err
	}

	for _, env := range report.Envs {
		if env.Err == nil {
			continue
		}
		fmt.Fprintf(app.stderr, "%s ", CmdStyle.Render(env.Name+":"))
		renderServiceError(app.stderr, classifyError(env.Err, app.verbose), app.verbose)
	}
	renderSummary(app.stdout, report)

	if !report.ExitCode.IsSuccess() {
		return exitWith(report.ExitCode)
	}
	return nil
}

// renderSummary prints one line per environment followed by the overall result.
func renderSummary(w io.Writer, report *dispatch.Report) {
	width := 0
	for _, env := range report.Envs {
		width = max(width, len(env.Name))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Summary"))
	failed := 0
	for _, env := range report.Envs {
		icon, status := SuccessStyle.Render("✓"), SuccessStyle.Render(string(env.Status))
		if env.Status != dispatch.StatusOK {
			failed++
			icon, status = ErrorStyle.Render("✗"), ErrorStyle.Render(string(env.Status))
		}
		fmt.Fprintf(w, "  %s %s  %s %s\n",
			icon,
			padRight(CmdStyle.Render(env.Name), len(env.Name), width),
			status,
			SubtitleStyle.Render(fmt.Sprintf("(exit %d, %d commands, %s)", env.ExitCode, env.Commands, env.Duration.Round(time.Millisecond))),
		)
	}

	if failed == 0 {
		fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("%d environment(s) succeeded", len(report.Envs))))
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("%d of %d environment(s) failed (exit %d)", failed, len(report.Envs), report.ExitCode)))
}

// padRight pads a rendered cell whose visible width is n to width columns.
func padRight(rendered string, n, width int) string {
	if n >= width {
		return rendered
	}
	return rendered + strings.Repeat(" ", width-n)
}
