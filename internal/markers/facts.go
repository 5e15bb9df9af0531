// SPDX-License-Identifier: MPL-2.0

package markers

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/envrun/envrun/pkg/platform"
)

// Marker variable names.
const (
	FactPlatformSystem   = "platform_system"
	FactSysPlatform      = "sys_platform"
	FactOSName           = "os_name"
	FactPlatformMachine  = "platform_machine"
	FactPythonVersion    = "python_version"
	FactPythonFull       = "python_full_version"
	FactImplementation   = "implementation_name"
	FactPythonImpl       = "platform_python_implementation"
	FactExtra            = "extra"
	defaultPythonVersion = "3"
)

var pythonVersionPattern = regexp.MustCompile(`(\d)\.?(\d+)(?:\.(\d+))?`)

// Facts maps marker variable names to their values.
type Facts map[string]string

var knownFacts = []string{
	FactPlatformSystem, FactSysPlatform, FactOSName, FactPlatformMachine,
	FactPythonVersion, FactPythonFull, FactImplementation, FactPythonImpl, FactExtra,
}

// KnownFacts returns the marker variable names the evaluator understands.
func KnownFacts() []string {
	return slices.Clone(knownFacts)
}

// HostFacts builds the facts for a host and a base_python value such as
// "python3.11", "py312" or "3.10". An empty base_python yields the bare
// major version "3".
func HostFacts(host platform.Host, basePython string) Facts {
	version, full := pythonVersion(basePython)
	impl, implName := "cpython", "CPython"
	if strings.HasPrefix(strings.ToLower(basePython), "pypy") {
		impl, implName = "pypy", "PyPy"
	}
	return Facts{
		FactPlatformSystem:  host.System,
		FactSysPlatform:     host.SysName,
		FactOSName:          host.OSName,
		FactPlatformMachine: host.Machine,
		FactPythonVersion:   version,
		FactPythonFull:      full,
		FactImplementation:  impl,
		FactPythonImpl:      implName,
		FactExtra:           "",
	}
}

// With returns a copy of f with overrides applied.
func (f Facts) With(overrides map[string]string) Facts {
	out := maps.Clone(f)
	if out == nil {
		out = Facts{}
	}
	maps.Copy(out, overrides)
	return out
}

func pythonVersion(basePython string) (version, full string) {
	m := pythonVersionPattern.FindStringSubmatch(basePython)
	if m == nil {
		return defaultPythonVersion, defaultPythonVersion
	}
	version = m[1] + "." + m[2]
	full = version
	if m[3] != "" {
		full += "." + m[3]
	}
	return version, full
}
