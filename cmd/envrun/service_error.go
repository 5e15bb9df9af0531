// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/envrun/envrun/internal/dispatch"
	"github.com/envrun/envrun/internal/issue"
	"github.com/envrun/envrun/internal/markers"
	"github.com/envrun/envrun/internal/registry"
	"github.com/envrun/envrun/internal/resolve"
	"github.com/envrun/envrun/pkg/descriptor"
)

// ServiceError is an error carrying rendering hints for the CLI layer: a
// pre-styled message and an optional issue catalog entry.
// Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (never nil).
	Err     error
	IssueID issue.Id
	// StyledMessage is printed before the catalog entry.
	StyledMessage string
}

func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID, StyledMessage: styledMessage}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps a failure to its issue catalog entry and a styled one-line
// message. Unrecognised errors get no catalog entry.
func classifyError(err error, verbose bool) *ServiceError {
	var id issue.Id
	switch {
	case errors.Is(err, descriptor.ErrNotFound):
		id = issue.DescriptorNotFoundId
	case errors.Is(err, descriptor.ErrParse), errors.Is(err, registry.ErrDuplicateName):
		id = issue.DescriptorParseErrorId
	case errors.Is(err, registry.ErrUnknownEnvironment):
		id = issue.UnknownEnvironmentId
	case errors.Is(err, resolve.ErrReferenceCycle):
		id = issue.ReferenceCycleId
	case errors.Is(err, resolve.ErrUnresolvedReference):
		id = issue.UnresolvedReferenceId
	case errors.Is(err, markers.ErrInvalidMarker):
		id = issue.InvalidMarkerId
	case errors.Is(err, dispatch.ErrNotAllowed):
		id = issue.CommandNotAllowedId
	case errors.Is(err, dispatch.ErrCommandFailed):
		id = issue.CommandFailedId
	}
	return newServiceError(err, id, fmt.Sprintf("%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose)))
}

// isUsageError reports whether err is a flag or argument mistake envrun
// reports itself. These have no catalog entry.
func isUsageError(err error) bool {
	return errors.Is(err, ErrUnexpectedArgs) || errors.Is(err, ErrUnknownFormat)
}

// renderServiceError prints the styled message, then the catalog entry when
// verbose output is on.
func renderServiceError(w io.Writer, svcErr *ServiceError, verbose bool) {
	if svcErr == nil {
		return
	}
	if svcErr.StyledMessage != "" {
		fmt.Fprint(w, svcErr.StyledMessage)
	}
	if svcErr.IssueID == 0 || !verbose {
		return
	}
	if entry := issue.Get(svcErr.IssueID); entry != nil {
		rendered, err := entry.Render("dark")
		if err != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", err)
			return
		}
		fmt.Fprint(w, rendered)
	}
}

// formatErrorForDisplay uses ActionableError formatting when available.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
