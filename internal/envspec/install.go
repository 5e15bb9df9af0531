// SPDX-License-Identifier: MPL-2.0

package envspec

import (
	"fmt"
	"strings"

	shlex "github.com/anmitsu/go-shlex"

	"github.com/envrun/envrun/internal/command"
)

const (
	packagesToken = "{packages}"
	optsToken     = "{opts}"
)

// InstallCommands returns the installer invocations run before the
// environment's commands: one for the dependencies (when there are any) and
// one for the project with its extras (unless skip_install is set).
func (s *EnvironmentSpec) InstallCommands() ([]command.Command, error) {
	var out []command.Command

	if len(s.deps) > 0 {
		var packages []string
		for _, d := range s.deps {
			if d.Name != "" {
				packages = append(packages, d.Requirement)
				continue
			}
			args, err := shlex.Split(d.Requirement, true)
			if err != nil {
				return nil, fmt.Errorf("dependency %q: %w", d.Requirement, err)
			}
			packages = append(packages, args...)
		}
		cmd, err := s.installCommandFor(packages)
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}

	if !s.skipInstall {
		project := s.rootDir
		if len(s.extras) > 0 {
			project += "[" + strings.Join(s.extras, ",") + "]"
		}
		cmd, err := s.installCommandFor([]string{project})
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, nil
}

// installCommandFor expands the installer template with packages in place
// of {packages}. A leading "python" runs as the environment's interpreter.
func (s *EnvironmentSpec) installCommandFor(packages []string) (command.Command, error) {
	tmpl := strings.ReplaceAll(s.installCommand, optsToken, "")
	tmpl = strings.ReplaceAll(tmpl, packagesToken, "{posargs}")
	cmd, err := command.AssembleOne(tmpl, packages, s.substitutions())
	if err != nil {
		return command.Command{}, err
	}
	if len(cmd.Argv) > 0 && isPython(cmd.Argv[0]) {
		cmd.Argv[0] = s.basePython
	}
	return cmd, nil
}
