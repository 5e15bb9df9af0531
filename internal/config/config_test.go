// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/envrun/envrun/internal/envspec"
	"github.com/envrun/envrun/internal/envvars"
	"github.com/envrun/envrun/internal/issue"
	"github.com/envrun/envrun/internal/testutil"
)

func load(t *testing.T, opts LoadOptions) (*Config, error) {
	t.Helper()
	if opts.ConfigDirPath == "" {
		opts.ConfigDirPath = t.TempDir()
	}
	if opts.WorkDir == "" {
		opts.WorkDir = t.TempDir()
	}
	return NewProvider().Load(t.Context(), opts)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.InstallCommand != envspec.DefaultInstallCommand {
		t.Errorf("InstallCommand = %q, want %q", cfg.InstallCommand, envspec.DefaultInstallCommand)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI.ColorScheme = %q, want auto", cfg.UI.ColorScheme)
	}
	if cfg.UI.Verbose || cfg.Descriptor != "" || len(cfg.DefaultEnvs) != 0 || len(cfg.PassEnv) != 0 {
		t.Errorf("unexpected non-zero defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := load(t, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source() != "" {
		t.Errorf("Source() = %q, want empty", cfg.Source())
	}
	if cfg.InstallCommand != envspec.DefaultInstallCommand || cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoad_ConfigDirFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.MustWriteFile(t, dir, "config.cue", `
descriptor: "ci/tox.ini"
default_envs: ["py312", "lint"]
pass_env: ["CI", "GITHUB_*"]
facts: python_version: "3.12"
ui: verbose: true
`)

	cfg, err := load(t, LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source() != path {
		t.Errorf("Source() = %q, want %q", cfg.Source(), path)
	}
	if cfg.Descriptor != "ci/tox.ini" {
		t.Errorf("Descriptor = %q", cfg.Descriptor)
	}
	if !slices.Equal(cfg.DefaultEnvs, []string{"py312", "lint"}) {
		t.Errorf("DefaultEnvs = %v", cfg.DefaultEnvs)
	}
	if !slices.Equal(cfg.PassEnv, []string{"CI", "GITHUB_*"}) {
		t.Errorf("PassEnv = %v", cfg.PassEnv)
	}
	if cfg.Facts["python_version"] != "3.12" {
		t.Errorf("Facts = %v", cfg.Facts)
	}
	if !cfg.UI.Verbose || cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI = %+v, want verbose with the default color scheme", cfg.UI)
	}
	if cfg.InstallCommand != envspec.DefaultInstallCommand {
		t.Errorf("InstallCommand default lost: %q", cfg.InstallCommand)
	}

	opts := cfg.ResolveOptions()
	defaults := envvars.DefaultPassEnv()
	if want := append(defaults, "CI", "GITHUB_*"); !slices.Equal(opts.GlobalPassEnv, want) {
		t.Errorf("GlobalPassEnv = %q, want the built-in list then %q", opts.GlobalPassEnv, cfg.PassEnv)
	}
	if opts.Facts["python_version"] != "3.12" {
		t.Errorf("ResolveOptions() = %+v", opts)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	testutil.MustWriteFile(t, work, LocalConfigFileName, `descriptor: "setup.cfg"`)

	cfg, err := load(t, LoadOptions{WorkDir: work})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Descriptor != "setup.cfg" {
		t.Errorf("Descriptor = %q, want setup.cfg", cfg.Descriptor)
	}
}

func TestLoad_ConfigDirWinsOverLocal(t *testing.T) {
	t.Parallel()

	dir, work := t.TempDir(), t.TempDir()
	testutil.MustWriteFile(t, dir, "config.cue", `descriptor: "from-dir.ini"`)
	testutil.MustWriteFile(t, work, LocalConfigFileName, `descriptor: "from-work.ini"`)

	cfg, err := load(t, LoadOptions{ConfigDirPath: dir, WorkDir: work})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Descriptor != "from-dir.ini" {
		t.Errorf("Descriptor = %q, want from-dir.ini", cfg.Descriptor)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, err := load(t, LoadOptions{ConfigFilePath: missing})
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("Load() error = %v, want *issue.ActionableError", err)
	}
	if ae.Resource != missing || !ae.HasSuggestions() {
		t.Errorf("unexpected error context: %+v", ae)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", `descriptor: `, "config.cue"},
		{"bad color scheme", `ui: color_scheme: "blue"`, "ui.color_scheme"},
		{"unknown field", `container_engine: "podman"`, "container_engine"},
		{"wrong type", `pass_env: "PATH"`, "pass_env"},
		{"env name with comma", `default_envs: ["a,b"]`, "default_envs"},
		{"install without packages", `install_command: "pip install"`, "install_command"},
		{"unknown fact", `facts: python_versoin: "3.12"`, "facts.python_versoin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := testutil.MustWriteFile(t, t.TempDir(), "config.cue", tt.content)
			_, err := load(t, LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_ValidationSuggestions(t *testing.T) {
	t.Parallel()

	path := testutil.MustWriteFile(t, t.TempDir(), "config.cue", `install_command: "uv pip install"`)
	_, err := load(t, LoadOptions{ConfigFilePath: path})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || !strings.Contains(ae.Format(false), "{packages}") {
		t.Errorf("expected a suggestion mentioning {packages}, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENVRUN_DESCRIPTOR", "override.ini")
	t.Setenv("ENVRUN_UI_VERBOSE", "true")
	t.Setenv("ENVRUN_DEFAULT_ENVS", "a,b")

	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "config.cue", `descriptor: "file.ini"`)

	cfg, err := load(t, LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Descriptor != "override.ini" {
		t.Errorf("Descriptor = %q, want the environment override", cfg.Descriptor)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose should be overridden to true")
	}
	if !slices.Equal(cfg.DefaultEnvs, []string{"a", "b"}) {
		t.Errorf("DefaultEnvs = %v, want [a b]", cfg.DefaultEnvs)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.cue")
	if err := WriteDefaultConfig(path, false); err != nil {
		t.Fatalf("WriteDefaultConfig() error: %v", err)
	}
	if err := WriteDefaultConfig(path, false); !errors.Is(err, ErrConfigExists) {
		t.Errorf("second write error = %v, want ErrConfigExists", err)
	}
	if err := WriteDefaultConfig(path, true); err != nil {
		t.Errorf("forced write error = %v", err)
	}

	cfg, err := load(t, LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	want := DefaultConfig()
	if cfg.InstallCommand != want.InstallCommand || cfg.UI != want.UI || cfg.Descriptor != "" {
		t.Errorf("round trip = %+v, want defaults", cfg)
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Descriptor = "tox.toml"
	cfg.DefaultEnvs = []string{"py312"}
	cfg.Facts = map[string]string{"sys_platform": "linux", "python_version": "3.12"}

	out := GenerateCUE(cfg)
	for _, want := range []string{
		`descriptor: "tox.toml"`,
		`default_envs: ["py312"]`,
		"\tpython_version: \"3.12\"\n\tsys_platform: \"linux\"",
		`color_scheme: "auto"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateCUE() missing %q:\n%s", want, out)
		}
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only consulted on Linux")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", AppName); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}

	home := t.TempDir()
	testutil.SetHomeDir(t, home)
	if dir, _ := ConfigDir(); dir != filepath.Join(home, ".config", AppName) {
		t.Errorf("ConfigDir() without XDG_CONFIG_HOME = %q", dir)
	}

	path, err := DefaultConfigPath()
	if err != nil || path != filepath.Join(home, ".config", AppName, "config.cue") {
		t.Errorf("DefaultConfigPath() = %q, %v", path, err)
	}
}

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	for _, cs := range []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight} {
		if ok, errs := cs.IsValid(); !ok || errs != nil {
			t.Errorf("%q.IsValid() = %v, %v", cs, ok, errs)
		}
	}
	ok, errs := ColorScheme("sepia").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidColorScheme) {
		t.Errorf("sepia.IsValid() = %v, %v", ok, errs)
	}
}
