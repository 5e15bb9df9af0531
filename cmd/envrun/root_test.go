// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/fang"

	"github.com/envrun/envrun/pkg/types"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got := getVersionString(); got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got, want := getVersionString(), "dev (built from source)"; got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want types.ExitCode
	}{
		{"success", nil, types.ExitSuccess},
		{"exit error", &ExitError{Code: 3}, 3},
		{"wrapped exit error", errors.Join(errors.New("ctx"), &ExitError{Code: types.ExitInterrupted}), types.ExitInterrupted},
		{"plain error", errors.New("boom"), types.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, t.TempDir(), nil)
	root := NewRootCommand(app)
	for _, name := range []string{"run", "list", "show", "validate", "config"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %q not registered (err=%v)", name, err)
		}
	}
	if f := root.PersistentFlags().ShorthandLookup("c"); f == nil || f.Name != "descriptor" {
		t.Error("-c should be the descriptor flag")
	}
}

func TestHandleError_UsageErrorsKeepMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unknown format", fmt.Errorf("%w %q (want text, yaml or json)", ErrUnknownFormat, "xml"), `unknown output format "xml"`},
		{"stray args", fmt.Errorf("%w %q: pass extra command arguments after --", ErrUnexpectedArgs, []string{"stray"}), "unexpected arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			handleError(&buf, fang.Styles{}, tt.err, false)
			if out := buf.String(); !strings.Contains(out, tt.want) || !strings.Contains(out, "Error:") {
				t.Errorf("handleError() output = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}
