// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"os/exec"

	"github.com/envrun/envrun/pkg/types"
)

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination.
func NewExitCodeResult(code types.ExitCode) *Result {
	return &Result{ExitCode: code}
}

// resultFromError maps the error returned by exec.Cmd.Run onto a Result.
func resultFromError(err error) *Result {
	if err == nil {
		return NewSuccessResult()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := types.ExitCode(exitErr.ExitCode())
		if code < 0 {
			// Killed by a signal.
			return NewExitCodeResult(types.ExitInterrupted)
		}
		if validateErr := code.Validate(); validateErr != nil {
			return NewErrorResult(types.ExitFailure, validateErr)
		}
		return NewExitCodeResult(code)
	}

	if errors.Is(err, exec.ErrNotFound) {
		return NewErrorResult(types.ExitNotFound, err)
	}
	return NewErrorResult(types.ExitFailure, err)
}
