// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/envrun/envrun/internal/dispatch"
	"github.com/envrun/envrun/internal/envspec"
)

// Output formats accepted by 'show --format'.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")

type showFlagValues struct {
	envs   []string
	format string
}

func newShowCommand(app *App, root *rootFlagValues) *cobra.Command {
	flags := &showFlagValues{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show resolved environments",
		Long: `Resolve the selected environments and print every field after
reference expansion, marker evaluation and variable substitution.`,
		Example: `  envrun show -e py312
  envrun show -e lint --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showEnvironments(app, root, flags)
		},
	}
	cmd.Flags().StringArrayVarP(&flags.envs, "env", "e", nil, "environments to show (repeatable, comma separated)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", FormatText, "output format: text, yaml or json")
	return cmd
}

func showEnvironments(app *App, root *rootFlagValues, flags *showFlagValues) error {
	switch flags.format {
	case FormatText, FormatYAML, FormatJSON:
	default:
		return fmt.Errorf("%w %q (want text, yaml or json)", ErrUnknownFormat, flags.format)
	}

	proj, err := app.loadProject(root)
	if err != nil {
		return err
	}
	requested := flags.envs
	if len(requested) == 0 {
		requested = app.defaultNames()
	}
	names, err := dispatch.New(proj.registry, nil, app.logger).Select(requested)
	if err != nil {
		return err
	}
	specs, err := envspec.ResolveAll(proj.registry, names, app.resolveOptions())
	if err != nil {
		return err
	}

	snapshots := make([]envspec.Snapshot, len(specs))
	for i, spec := range specs {
		snapshots[i] = spec.Snapshot()
	}

	switch flags.format {
	case FormatJSON:
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshots)
	case FormatYAML:
		enc := yaml.NewEncoder(app.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(snapshots); err != nil {
			return err
		}
		return enc.Close()
	default:
		for i, s := range snapshots {
			if i > 0 {
				fmt.Fprintln(app.stdout)
			}
			renderSnapshot(app.stdout, s)
		}
		return nil
	}
}

// renderSnapshot prints one resolved environment as an annotated listing.
func renderSnapshot(w io.Writer, s envspec.Snapshot) {
	fmt.Fprintln(w, TitleStyle.Render("["+s.Name+"]"))
	scalar := func(key, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render(key+":"), value)
		}
	}
	list := func(key string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render(key+":"))
		for _, item := range items {
			fmt.Fprintf(w, "    %s\n", item)
		}
	}

	scalar("description", s.Description)
	scalar("base_python", s.BasePython)
	scalar("skip_install", strconv.FormatBool(s.SkipInstall))
	scalar("recreate", strconv.FormatBool(s.Recreate))
	scalar("ignore_errors", strconv.FormatBool(s.IgnoreErrors))
	scalar("change_dir", s.ChangeDir)
	scalar("install_command", s.InstallCommand)
	list("deps", s.Deps)
	list("extras", s.Extras)
	list("pass_env", s.PassEnv)
	list("set_env", s.SetEnv)
	list("commands", s.Commands)
	list("allowlist_externals", s.Allowlist)
	for _, d := range s.Diagnostics {
		fmt.Fprintf(w, "  %s %s\n", WarningStyle.Render("warning:"), d)
	}
}
