// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetHomeDir points the platform's home directory variable at dir for the
// rest of the test and clears XDG_CONFIG_HOME so the home-relative default
// applies. Tests calling it cannot run in parallel.
//
// Platform handling:
//   - Windows: Sets USERPROFILE and clears APPDATA
//   - Linux/macOS: Sets HOME
func SetHomeDir(t *testing.T, dir string) {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		t.Setenv("USERPROFILE", dir)
		t.Setenv("APPDATA", "")
	default:
		t.Setenv("HOME", dir)
	}
	t.Setenv("XDG_CONFIG_HOME", "")
}
