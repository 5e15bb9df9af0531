// SPDX-License-Identifier: MPL-2.0

package envvars

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAssignment is returned when a set_env line is not KEY=VALUE or file|PATH.
	ErrInvalidAssignment = errors.New("invalid set_env assignment")

	// ErrEnvFile is returned when a set_env dotenv file cannot be loaded.
	ErrEnvFile = errors.New("cannot load env file")
)

type (
	// AssignmentError reports a malformed set_env line.
	AssignmentError struct {
		Line   string
		Reason string
	}

	// EnvFileError reports a dotenv file failure.
	EnvFileError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *AssignmentError) Error() string {
	return fmt.Sprintf("invalid set_env line %q: %s", e.Line, e.Reason)
}

// Unwrap returns ErrInvalidAssignment for errors.Is() compatibility.
func (e *AssignmentError) Unwrap() error { return ErrInvalidAssignment }

// Error implements the error interface.
func (e *EnvFileError) Error() string {
	return fmt.Sprintf("env file %s: %v", e.Path, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *EnvFileError) Unwrap() []error { return []error{ErrEnvFile, e.Err} }
