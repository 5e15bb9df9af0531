// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestMustWriteFile_CreatesParents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := MustWriteFile(t, dir, "nested/deeper/tox.ini", "[tox]\n")

	if want := filepath.Join(dir, "nested", "deeper", "tox.ini"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "[tox]\n" {
		t.Errorf("content = %q", data)
	}
}

func TestSetHomeDir(t *testing.T) {
	dir := t.TempDir()
	SetHomeDir(t, dir)

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error: %v", err)
	}
	if home != dir {
		t.Errorf("UserHomeDir() = %q, want %q", home, dir)
	}
	if runtime.GOOS != "windows" && os.Getenv("XDG_CONFIG_HOME") != "" {
		t.Error("XDG_CONFIG_HOME should be cleared")
	}
}
