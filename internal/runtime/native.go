// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/envrun/envrun/pkg/platform"
)

// NativeLauncher runs commands directly on the host.
type NativeLauncher struct {
	// Sandbox is the sandbox the process runs in. Commands inside a
	// Flatpak or Snap sandbox are spawned on the host.
	Sandbox platform.SandboxType
}

// NewNativeLauncher creates a NativeLauncher for the detected sandbox.
func NewNativeLauncher() *NativeLauncher {
	return &NativeLauncher{Sandbox: platform.DetectSandbox()}
}

// Name returns the launcher name.
func (l *NativeLauncher) Name() LauncherName { return LauncherNative }

// Launch runs req.Argv and waits for it.
func (l *NativeLauncher) Launch(ctx context.Context, req Request) *Result {
	if len(req.Argv) == 0 {
		return NewErrorResult(1, ErrEmptyCommand)
	}
	if err := validateWorkDir(req.Dir); err != nil {
		return NewErrorResult(1, err)
	}

	argv := platform.HostArgv(l.Sandbox, req.Dir, req.Env, req.Argv)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = req.Dir
	cmd.Env = req.Env
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr
	cmd.Stdin = req.Stdin

	return resultFromError(cmd.Run())
}

// validateWorkDir validates that a working directory exists and is accessible.
func validateWorkDir(dir string) error {
	if dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied: %s", dir)
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}
	return nil
}
