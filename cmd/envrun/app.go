// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/envrun/envrun/internal/config"
	"github.com/envrun/envrun/internal/envspec"
	"github.com/envrun/envrun/internal/envvars"
	"github.com/envrun/envrun/internal/issue"
	"github.com/envrun/envrun/internal/registry"
	"github.com/envrun/envrun/internal/runtime"
	"github.com/envrun/envrun/pkg/descriptor"
	"github.com/envrun/envrun/pkg/platform"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// App wires CLI services and shared dependencies. All command handlers
	// receive an App and reach the configuration, the launcher and the
	// streams through it.
	App struct {
		Config   ConfigProvider
		Launcher runtime.Launcher
		environ  func() []string
		workDir  string
		stdout   io.Writer
		stderr   io.Writer
		stdin    io.Reader

		// Set by the root command before any subcommand runs.
		cfg     *config.Config
		logger  *slog.Logger
		verbose bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Launcher runtime.Launcher
		// Environ returns the caller environment; defaults to os.Environ.
		Environ func() []string
		// WorkDir is where descriptors and envrun.cue are looked up;
		// defaults to the process working directory.
		WorkDir string
		Stdout  io.Writer
		Stderr  io.Writer
		Stdin   io.Reader
	}

	// project is a loaded descriptor and its registry.
	project struct {
		path     string
		registry *registry.Registry
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Launcher == nil {
		deps.Launcher = runtime.NewNativeLauncher()
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ
	}
	if deps.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, issue.WrapWithContext(err, "determine working directory", "")
		}
		deps.WorkDir = wd
	}

	return &App{
		Config:   deps.Config,
		Launcher: deps.Launcher,
		environ:  deps.Environ,
		workDir:  deps.WorkDir,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		stdin:    deps.Stdin,
		cfg:      config.DefaultConfig(),
		logger:   newLogger(deps.Stderr, false),
	}, nil
}

// init loads the configuration and sets up logging. A broken config file is
// reported as a warning and the defaults apply, so 'config init --force'
// still works.
func (a *App) init(ctx context.Context, flags *rootFlagValues) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath, WorkDir: a.workDir})
	if err != nil {
		a.warn(formatErrorForDisplay(err, flags.verbose))
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg
	a.verbose = flags.verbose || cfg.UI.Verbose
	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	}
	a.logger = newLogger(a.stderr, a.verbose)
	a.logger.Debug("configuration loaded", "source", cfg.Source())
}

func (a *App) warn(msg string) {
	_, _ = io.WriteString(a.stderr, WarningStyle.Render("Warning: ")+msg+"\n")
}

// descriptorPath picks the descriptor: the flag, then the configured path,
// then discovery in the working directory.
func (a *App) descriptorPath(flags *rootFlagValues) (string, error) {
	path := flags.descriptorPath
	if path == "" {
		path = a.cfg.Descriptor
	}
	if path == "" {
		return descriptor.Discover(a.workDir)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.workDir, path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", &descriptor.NotFoundError{Dir: filepath.Dir(path), Candidates: []string{filepath.Base(path)}}
	}
	return path, nil
}

// loadProject loads the descriptor and builds the environment registry.
func (a *App) loadProject(flags *rootFlagValues) (*project, error) {
	path, err := a.descriptorPath(flags)
	if err != nil {
		return nil, err
	}
	d, err := descriptor.Load(path)
	if err != nil {
		return nil, err
	}
	reg, err := registry.FromDescriptor(d)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("descriptor loaded", "path", path, "envs", len(reg.Names()))
	return &project{path: path, registry: reg}, nil
}

// resolveOptions combines the configuration with the host and caller
// environment.
func (a *App) resolveOptions() envspec.Options {
	opts := a.cfg.ResolveOptions()
	opts.Host = platform.CurrentHost()
	opts.Lookup = envvars.EnvironLookup(a.environ())
	return opts
}

// defaultNames returns the configured default environments, if any.
func (a *App) defaultNames() []string {
	return a.cfg.DefaultEnvs
}
