// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"io"

	"github.com/envrun/envrun/pkg/types"
)

// Launcher name constants.
const (
	LauncherNative LauncherName = "native"
	LauncherDryRun LauncherName = "dry-run"
)

// ErrEmptyCommand is returned when a Request has no argv.
var ErrEmptyCommand = errors.New("empty command")

type (
	// LauncherName identifies a Launcher implementation.
	LauncherName string

	// Request describes one command launch.
	Request struct {
		// Argv is the executable followed by its arguments.
		Argv []string
		// Dir is the working directory. Empty means the current directory.
		Dir string
		// Env is the complete environment as KEY=VALUE pairs.
		Env []string
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
		// Stdin is where to read standard input.
		Stdin io.Reader
	}

	// Result contains the outcome of a launch.
	Result struct {
		// ExitCode is the exit status of the command.
		ExitCode types.ExitCode
		// Error is set when the command could not be started or waited on.
		Error error
	}

	// Launcher runs commands.
	Launcher interface {
		// Name returns the launcher name.
		Name() LauncherName
		// Launch runs req and waits for it to finish.
		Launch(ctx context.Context, req Request) *Result
	}
)

// Failed reports whether the launch did not succeed.
func (r *Result) Failed() bool {
	return r.Error != nil || !r.ExitCode.IsSuccess()
}
