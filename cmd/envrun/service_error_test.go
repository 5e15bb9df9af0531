// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/envrun/envrun/internal/dispatch"
	"github.com/envrun/envrun/internal/issue"
	"github.com/envrun/envrun/internal/markers"
	"github.com/envrun/envrun/internal/registry"
	"github.com/envrun/envrun/internal/resolve"
	"github.com/envrun/envrun/pkg/descriptor"
)

func TestNewServiceError_PanicsOnNilErr(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on nil Err, got none")
		}
		if msg, ok := r.(string); !ok || msg != "ServiceError: Err must not be nil" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()

	newServiceError(nil, 0, "")
}

func TestServiceError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	underlying := errors.New("underlying error")
	svcErr := newServiceError(underlying, 0, "")

	if svcErr.Error() != "underlying error" {
		t.Errorf("Error() = %q, want %q", svcErr.Error(), "underlying error")
	}
	if !errors.Is(svcErr, underlying) {
		t.Error("errors.Is should find underlying error via Unwrap")
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"descriptor not found", &descriptor.NotFoundError{Dir: "/p", Candidates: []string{"tox.ini"}}, issue.DescriptorNotFoundId},
		{"parse error", &descriptor.ParseError{Path: "tox.ini", Err: errors.New("bad line")}, issue.DescriptorParseErrorId},
		{"duplicate env", &registry.DuplicateNameError{Name: "py"}, issue.DescriptorParseErrorId},
		{"unknown env", &registry.UnknownEnvironmentError{Name: "nope"}, issue.UnknownEnvironmentId},
		{"cycle", &resolve.ReferenceCycleError{Chain: []resolve.FieldID{{Section: "a", Key: "deps"}}}, issue.ReferenceCycleId},
		{"unresolved", &resolve.UnresolvedReferenceError{Ref: resolve.FieldID{Section: "x", Key: "y"}}, issue.UnresolvedReferenceId},
		{"invalid marker", &markers.InvalidMarkerError{Marker: "python_version <", Err: errors.New("eof")}, issue.InvalidMarkerId},
		{"not allowed", &dispatch.NotAllowedError{Env: "lint", Executable: "rm"}, issue.CommandNotAllowedId},
		{"command failed", &dispatch.CommandFailedError{Env: "py", Command: "pytest", ExitCode: 2}, issue.CommandFailedId},
		{"wrapped", fmt.Errorf("loading: %w", &registry.UnknownEnvironmentError{Name: "nope"}), issue.UnknownEnvironmentId},
		{"unrecognised", errors.New("boom"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svcErr := classifyError(tt.err, false)
			if svcErr.IssueID != tt.want {
				t.Errorf("IssueID = %d, want %d", svcErr.IssueID, tt.want)
			}
			if !strings.Contains(svcErr.StyledMessage, tt.err.Error()) {
				t.Errorf("StyledMessage %q should contain %q", svcErr.StyledMessage, tt.err.Error())
			}
		})
	}
}

func TestRenderServiceError(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		renderServiceError(&buf, nil, true)
		if buf.Len() != 0 {
			t.Errorf("expected no output for nil ServiceError, got %q", buf.String())
		}
	})

	t.Run("catalog entry only when verbose", func(t *testing.T) {
		t.Parallel()

		svcErr := newServiceError(errors.New("cycle"), issue.ReferenceCycleId, "styled output\n")

		var quiet bytes.Buffer
		renderServiceError(&quiet, svcErr, false)
		if quiet.String() != "styled output\n" {
			t.Errorf("non-verbose output = %q, want the styled message only", quiet.String())
		}

		var verbose bytes.Buffer
		renderServiceError(&verbose, svcErr, true)
		if !strings.HasPrefix(verbose.String(), "styled output\n") {
			t.Errorf("verbose output should start with the styled message, got %q", verbose.String())
		}
		if verbose.Len() <= quiet.Len() {
			t.Error("verbose output should include the catalog entry")
		}
	})
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	plain := errors.New("plain")
	if got := formatErrorForDisplay(plain, false); got != "plain" {
		t.Errorf("formatErrorForDisplay(plain) = %q", got)
	}

	ae := issue.NewErrorContext().
		WithOperation("load descriptor").
		WithResource("tox.ini").
		WithSuggestion("check the file").
		Wrap(errors.New("denied")).
		BuildError()
	got := formatErrorForDisplay(ae, false)
	if !strings.Contains(got, "check the file") {
		t.Errorf("formatErrorForDisplay(actionable) = %q, want the suggestion", got)
	}
}
