// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"errors"
	"fmt"

	"github.com/envrun/envrun/pkg/types"
)

var (
	// ErrCommandFailed is returned when a command exits non-zero.
	ErrCommandFailed = errors.New("command failed")

	// ErrNotAllowed is returned when a command's executable is missing from
	// a non-empty allowlist_externals.
	ErrNotAllowed = errors.New("executable not allow-listed")

	// ErrNoEnvironments is returned when nothing is selected to run.
	ErrNoEnvironments = errors.New("no environments selected")
)

type (
	// CommandFailedError reports the command that ended an environment.
	CommandFailedError struct {
		Env      string
		Command  string
		ExitCode types.ExitCode
		Err      error
	}

	// NotAllowedError reports an executable outside allowlist_externals.
	NotAllowedError struct {
		Env        string
		Executable string
	}
)

// Error implements the error interface.
func (e *CommandFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Env, e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %s exited with code %d", e.Env, e.Command, e.ExitCode)
}

// Unwrap returns ErrCommandFailed and the launch error, if any.
func (e *CommandFailedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCommandFailed, e.Err}
	}
	return []error{ErrCommandFailed}
}

// Error implements the error interface.
func (e *NotAllowedError) Error() string {
	return fmt.Sprintf("%s: %s is not in allowlist_externals", e.Env, e.Executable)
}

// Unwrap returns ErrNotAllowed for errors.Is() compatibility.
func (e *NotAllowedError) Unwrap() error { return ErrNotAllowed }
