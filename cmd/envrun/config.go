// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/envrun/envrun/internal/config"
)

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage envrun configuration",
		Long: `Manage the envrun configuration file.

The configuration is read from $XDG_CONFIG_HOME/envrun/config.cue, or from
envrun.cue in the working directory. ENVRUN_* variables override it.`,
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			if err := config.WriteDefaultConfig(path, force); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s wrote %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as CUE",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := io.WriteString(app.stdout, config.GenerateCUE(app.cfg))
				return err
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file in use",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path := app.cfg.Source()
				if path == "" {
					p, err := config.DefaultConfigPath()
					if err != nil {
						return err
					}
					path = p + " " + SubtitleStyle.Render("(not present)")
				}
				fmt.Fprintln(app.stdout, path)
				return nil
			},
		},
		initCmd,
	)
	return cmd
}
