// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

// Sandbox type constants.
const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap indicates a Snap sandbox environment.
	SandboxSnap SandboxType = "snap"

	flatpakInfoPath = "/.flatpak-info"
)

// detectOnce caches the sandbox detection result for the lifetime of the process.
//
// INVARIANT: detectSandboxFrom MUST NOT panic. sync.OnceValue re-panics on
// every call after a panic.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// SandboxType identifies the type of application sandbox, if any.
type SandboxType string

// DetectSandbox returns the sandbox the current process runs in. The result
// is cached after the first call.
//
// Detection methods:
//   - Flatpak: /.flatpak-info exists
//   - Snap: SNAP_NAME is set
func DetectSandbox() SandboxType {
	return detectOnce()
}

// HostArgv rewrites argv so that it runs on the host rather than inside the
// sandbox. Inside Flatpak the command goes through flatpak-spawn, which does
// not forward the working directory or environment, so both are passed as
// flags. Snap confinement offers no host spawn; argv is returned unchanged
// there and outside any sandbox.
func HostArgv(st SandboxType, dir string, env, argv []string) []string {
	if st != SandboxFlatpak {
		return argv
	}
	out := make([]string, 0, len(argv)+len(env)+3)
	out = append(out, "flatpak-spawn", "--host")
	if dir != "" {
		out = append(out, "--directory="+dir)
	}
	for _, kv := range env {
		out = append(out, "--env="+kv)
	}
	return append(out, argv...)
}

// detectSandboxFrom performs sandbox detection using the provided lookup functions.
// Flatpak takes precedence over Snap.
func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	if err := statFile(flatpakInfoPath); err == nil {
		return SandboxFlatpak
	}
	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
