// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/envrun/envrun/internal/envspec"
	"github.com/envrun/envrun/internal/resolve"
	"github.com/envrun/envrun/pkg/platform"
	"github.com/envrun/envrun/pkg/types"
)

var (
	validateOKIcon   = SuccessStyle.Render("✓")
	validateFailIcon = ErrorStyle.Render("✗")
	validateWarnIcon = WarningStyle.Render("!")
)

func newValidateCommand(app *App, root *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the descriptor without running anything",
		Long: `Check every reference in the descriptor, then resolve every
environment and assemble its commands. All problems are reported before
the command exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return validateProject(app, root)
		},
	}
}

// validateProject reports reference errors across the whole descriptor,
// then per-environment resolution errors, marker diagnostics and
// environment names Windows cannot use as directories.
func validateProject(app *App, root *rootFlagValues) error {
	proj, err := app.loadProject(root)
	if err != nil {
		return err
	}

	w := app.stdout
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Validating"), CmdStyle.Render(proj.path))

	failures := 0
	for _, err := range resolve.Validate(proj.registry.Descriptor()) {
		failures++
		fmt.Fprintf(w, "  %s %s\n", validateFailIcon, formatErrorForDisplay(err, app.verbose))
	}

	opts := app.resolveOptions()
	for _, name := range proj.registry.Names() {
		if platform.IsWindowsReservedName(name) {
			fmt.Fprintf(w, "  %s %s: name is reserved on Windows\n", validateWarnIcon, CmdStyle.Render(name))
		}

		spec, err := envspec.Resolve(proj.registry, name, opts)
		if err == nil {
			err = assembleAll(spec)
		}
		if err != nil {
			failures++
			fmt.Fprintf(w, "  %s %s: %s\n", validateFailIcon, CmdStyle.Render(name), formatErrorForDisplay(err, app.verbose))
			continue
		}
		for _, d := range spec.Diagnostics() {
			fmt.Fprintf(w, "  %s %s: %s\n", validateWarnIcon, CmdStyle.Render(name), d)
		}
		fmt.Fprintf(w, "  %s %s\n", validateOKIcon, CmdStyle.Render(name))
	}

	if failures > 0 {
		fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("%d problem(s) found", failures)))
		return exitWith(types.ExitFailure)
	}
	fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("descriptor is valid (%d environments)", len(proj.registry.Names()))))
	return nil
}

// assembleAll builds every command a run of spec would launch.
func assembleAll(spec *envspec.EnvironmentSpec) error {
	if _, err := spec.InstallCommands(); err != nil {
		return err
	}
	_, err := spec.Commands(nil)
	return err
}
