// SPDX-License-Identifier: MPL-2.0

package envspec

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/envrun/envrun/internal/command"
	"github.com/envrun/envrun/internal/envvars"
	"github.com/envrun/envrun/internal/markers"
)

type (
	// EnvironmentSpec is the resolved description of one environment. It is
	// immutable: accessors return copies.
	EnvironmentSpec struct {
		name           string
		description    string
		basePython     string
		skipInstall    bool
		recreate       bool
		ignoreErrors   bool
		deps           []markers.Dependency
		extras         []string
		passEnv        []string
		setEnv         *envvars.Assignments
		commands       []string
		allowlist      []string
		changeDir      string
		installCommand string
		rootDir        string
		diagnostics    []string
	}

	// Snapshot is a plain, serialisable copy of an EnvironmentSpec.
	Snapshot struct {
		Name           string   `json:"name" yaml:"name"`
		Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
		BasePython     string   `json:"base_python" yaml:"base_python"`
		SkipInstall    bool     `json:"skip_install" yaml:"skip_install"`
		Recreate       bool     `json:"recreate" yaml:"recreate"`
		IgnoreErrors   bool     `json:"ignore_errors" yaml:"ignore_errors"`
		Deps           []string `json:"deps,omitempty" yaml:"deps,omitempty"`
		Extras         []string `json:"extras,omitempty" yaml:"extras,omitempty"`
		PassEnv        []string `json:"pass_env,omitempty" yaml:"pass_env,omitempty"`
		SetEnv         []string `json:"set_env,omitempty" yaml:"set_env,omitempty"`
		Commands       []string `json:"commands,omitempty" yaml:"commands,omitempty"`
		Allowlist      []string `json:"allowlist_externals,omitempty" yaml:"allowlist_externals,omitempty"`
		ChangeDir      string   `json:"change_dir" yaml:"change_dir"`
		InstallCommand string   `json:"install_command" yaml:"install_command"`
		Diagnostics    []string `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	}
)

// Name returns the environment name.
func (s *EnvironmentSpec) Name() string { return s.name }

// Description returns the human-readable description.
func (s *EnvironmentSpec) Description() string { return s.description }

// BasePython returns the interpreter the environment runs with.
func (s *EnvironmentSpec) BasePython() string { return s.basePython }

// SkipInstall reports whether installing the project itself is skipped.
func (s *EnvironmentSpec) SkipInstall() bool { return s.skipInstall }

// Recreate reports whether the environment asks to be rebuilt.
func (s *EnvironmentSpec) Recreate() bool { return s.recreate }

// IgnoreErrors reports whether a failing command lets the next one run.
func (s *EnvironmentSpec) IgnoreErrors() bool { return s.ignoreErrors }

// Deps returns the dependencies that survived marker filtering.
func (s *EnvironmentSpec) Deps() []markers.Dependency { return slices.Clone(s.deps) }

// Extras returns the project extras to install.
func (s *EnvironmentSpec) Extras() []string { return slices.Clone(s.extras) }

// PassEnv returns the merged passthrough names and patterns.
func (s *EnvironmentSpec) PassEnv() []string { return slices.Clone(s.passEnv) }

// SetEnv returns the set_env assignments.
func (s *EnvironmentSpec) SetEnv() *envvars.Assignments { return s.setEnv.Clone() }

// CommandTemplates returns the command lines before posargs expansion.
func (s *EnvironmentSpec) CommandTemplates() []string { return slices.Clone(s.commands) }

// Allowlist returns the allow-listed external executables.
func (s *EnvironmentSpec) Allowlist() []string { return slices.Clone(s.allowlist) }

// ChangeDir returns the working directory commands run in.
func (s *EnvironmentSpec) ChangeDir() string { return s.changeDir }

// InstallCommandTemplate returns the installer template.
func (s *EnvironmentSpec) InstallCommandTemplate() string { return s.installCommand }

// RootDir returns the project root.
func (s *EnvironmentSpec) RootDir() string { return s.rootDir }

// Diagnostics returns warnings produced while resolving.
func (s *EnvironmentSpec) Diagnostics() []string { return slices.Clone(s.diagnostics) }

// Commands expands the command templates against the caller's arguments.
func (s *EnvironmentSpec) Commands(posargs []string) ([]command.Command, error) {
	return command.Assemble(s.commands, posargs, s.substitutions())
}

// Environ builds the launch environment from the caller's environment.
func (s *EnvironmentSpec) Environ(caller []string) []string {
	return envvars.LaunchEnv(s.passEnv, s.setEnv, caller)
}

// Allows reports whether exe may be launched. An empty allowlist allows
// everything; the environment's interpreter and the tools named by its
// dependencies are always allowed. Entries may be exact names, paths or glob
// patterns.
func (s *EnvironmentSpec) Allows(exe string) bool {
	if len(s.allowlist) == 0 {
		return true
	}
	base := filepath.Base(exe)
	if isPython(base) || base == filepath.Base(s.basePython) {
		return true
	}
	name := markers.NormaliseName(strings.TrimSuffix(base, ".exe"))
	for _, d := range s.deps {
		if d.Name == name {
			return true
		}
	}
	for _, pattern := range s.allowlist {
		if pattern == exe || pattern == base {
			return true
		}
		if ok, _ := path.Match(filepath.ToSlash(pattern), filepath.ToSlash(exe)); ok {
			return true
		}
	}
	return false
}

// Snapshot returns a serialisable copy.
func (s *EnvironmentSpec) Snapshot() Snapshot {
	deps := make([]string, len(s.deps))
	for i, d := range s.deps {
		deps[i] = d.String()
	}
	return Snapshot{
		Name:           s.name,
		Description:    s.description,
		BasePython:     s.basePython,
		SkipInstall:    s.skipInstall,
		Recreate:       s.recreate,
		IgnoreErrors:   s.ignoreErrors,
		Deps:           deps,
		Extras:         slices.Clone(s.extras),
		PassEnv:        slices.Clone(s.passEnv),
		SetEnv:         s.setEnv.Pairs(),
		Commands:       slices.Clone(s.commands),
		Allowlist:      slices.Clone(s.allowlist),
		ChangeDir:      s.changeDir,
		InstallCommand: s.installCommand,
		Diagnostics:    slices.Clone(s.diagnostics),
	}
}

func (s *EnvironmentSpec) substitutions() command.Substitutions {
	return command.Substitutions{Root: s.rootDir, EnvName: s.name}
}

func isPython(exe string) bool {
	switch exe {
	case "python", "python3", "python.exe", "python3.exe":
		return true
	}
	return false
}
