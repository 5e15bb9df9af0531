// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"io/fs"
	"slices"
	"testing"
)

func TestDetectSandboxFrom(t *testing.T) {
	t.Parallel()

	exists := func(string) error { return nil }
	missing := func(string) error { return fs.ErrNotExist }
	env := func(v string) func(string) string {
		return func(string) string { return v }
	}

	tests := []struct {
		name   string
		lookup func(string) string
		stat   func(string) error
		want   SandboxType
	}{
		{"no sandbox", env(""), missing, SandboxNone},
		{"snap", env("my-snap"), missing, SandboxSnap},
		{"flatpak", env(""), exists, SandboxFlatpak},
		{"flatpak takes precedence", env("my-snap"), exists, SandboxFlatpak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := detectSandboxFrom(tt.lookup, tt.stat); got != tt.want {
				t.Errorf("detectSandboxFrom() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSandboxFrom_StatPath(t *testing.T) {
	t.Parallel()

	var checked string
	detectSandboxFrom(func(string) string { return "" }, func(p string) error {
		checked = p
		return errors.New("nope")
	})
	if checked != flatpakInfoPath {
		t.Errorf("stat path = %q, want %q", checked, flatpakInfoPath)
	}
}

func TestHostArgv(t *testing.T) {
	t.Parallel()

	argv := []string{"pytest", "-x"}
	env := []string{"A=1", "B=2"}

	tests := []struct {
		name string
		st   SandboxType
		dir  string
		want []string
	}{
		{"none", SandboxNone, "/proj", argv},
		{"snap", SandboxSnap, "/proj", argv},
		{"flatpak", SandboxFlatpak, "/proj", []string{
			"flatpak-spawn", "--host", "--directory=/proj", "--env=A=1", "--env=B=2", "pytest", "-x",
		}},
		{"flatpak without dir", SandboxFlatpak, "", []string{
			"flatpak-spawn", "--host", "--env=A=1", "--env=B=2", "pytest", "-x",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HostArgv(tt.st, tt.dir, env, argv); !slices.Equal(got, tt.want) {
				t.Errorf("HostArgv() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSandbox_Cached(t *testing.T) {
	t.Parallel()

	if first, second := DetectSandbox(), DetectSandbox(); first != second {
		t.Errorf("DetectSandbox() changed between calls: %q then %q", first, second)
	}
}
