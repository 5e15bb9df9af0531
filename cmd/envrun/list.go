// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/envrun/envrun/internal/envspec"
)

func newListCommand(app *App, root *rootFlagValues) *cobra.Command {
	var defaultsOnly bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the defined environments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listEnvironments(app, root, defaultsOnly)
		},
	}
	cmd.Flags().BoolVarP(&defaultsOnly, "defaults", "d", false, "only list the default environments")
	return cmd
}

// listEnvironments prints every environment in declaration order. Default
// environments are marked with '*'. A description that fails to resolve is
// replaced by the resolution error.
func listEnvironments(app *App, root *rootFlagValues, defaultsOnly bool) error {
	proj, err := app.loadProject(root)
	if err != nil {
		return err
	}

	reg := proj.registry
	defaults := reg.DefaultNames()
	names := reg.Names()
	if defaultsOnly {
		names = defaults
	}

	w := app.stdout
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Environments in"), CmdStyle.Render(proj.path))
	if len(names) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("  (none)"))
		return nil
	}

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}
	opts := app.resolveOptions()
	for _, name := range names {
		marker := " "
		if slices.Contains(defaults, name) {
			marker = "*"
		}
		desc := ""
		spec, err := envspec.Resolve(reg, name, opts)
		switch {
		case err != nil:
			desc = ErrorStyle.Render(err.Error())
		default:
			desc = SubtitleStyle.Render(spec.Description())
		}
		fmt.Fprintf(w, "%s %s  %s\n", marker, padRight(CmdStyle.Render(name), len(name), width), desc)
	}
	return nil
}
