// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strconv"

	"github.com/envrun/envrun/pkg/types"
)

// ExitError carries a process exit code out of a RunE handler. Err is nil
// when the command already printed its own report (run summaries, validate
// listings) and the error handler must stay silent.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// exitWith returns an already-reported failure with code.
func exitWith(code types.ExitCode) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit status " + strconv.Itoa(int(e.Code))
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error { return e.Err }
