// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	if err := FormatError(nil, "config.cue"); err != nil {
		t.Errorf("FormatError(nil) = %v, want nil", err)
	}

	err := FormatError(errors.New("boom"), "config.cue")
	if err == nil || err.Error() != "config.cue: boom" {
		t.Errorf("FormatError(plain) = %v, want %q", err, "config.cue: boom")
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []string
		want string
	}{
		{"empty", nil, ""},
		{"single", []string{"descriptor"}, "descriptor"},
		{"nested", []string{"ui", "color_scheme"}, "ui.color_scheme"},
		{"index", []string{"default_envs", "2"}, "default_envs[2]"},
		{"index then field", []string{"facts", "0", "name"}, "facts[0].name"},
		{"leading digits stay a field", []string{"0", "x"}, "0.x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, false},
		{"under limit", 10, false},
		{"at limit", 100, false},
		{"over limit", 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckFileSize(make([]byte, tt.size), 100, "config.cue")
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckFileSize(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "101") {
				t.Errorf("error should mention the actual size: %v", err)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	withPath := &ValidationError{FilePath: "config.cue", CUEPath: "install_command", Message: "missing {packages}"}
	if got, want := withPath.Error(), "config.cue: install_command: missing {packages}"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := &ValidationError{FilePath: "config.cue", Message: "empty"}
	if got, want := bare.Error(), "config.cue: empty"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if bare.Unwrap() != nil {
		t.Error("Unwrap() should return nil")
	}
}
