// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/envrun/envrun/internal/envspec"
	"github.com/envrun/envrun/internal/envvars"
	"github.com/envrun/envrun/internal/markers"
	"github.com/envrun/envrun/pkg/cueutil"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	packagesPlaceholder = "{packages}"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError collects every field error of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Descriptor is the descriptor file used when --descriptor is not given.
		Descriptor string `json:"descriptor,omitempty" mapstructure:"descriptor"`
		// DefaultEnvs replaces env_list when -e is not given.
		DefaultEnvs []string `json:"default_envs,omitempty" mapstructure:"default_envs"`
		// PassEnv extends the built-in passthrough list ahead of every
		// environment's pass_env.
		PassEnv []string `json:"pass_env,omitempty" mapstructure:"pass_env"`
		// InstallCommand overrides the dependency install command.
		InstallCommand string `json:"install_command,omitempty" mapstructure:"install_command"`
		// Facts overrides marker facts detected from the host.
		Facts map[string]string `json:"facts,omitempty" mapstructure:"facts"`
		UI    UIConfig          `json:"ui" mapstructure:"ui"`

		source string
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Source returns the file the configuration was loaded from, or "" when only
// defaults and environment overrides apply.
func (c *Config) Source() string { return c.source }

// ResolveOptions maps the configuration onto environment resolution options.
func (c *Config) ResolveOptions() envspec.Options {
	return envspec.Options{
		GlobalPassEnv:  envvars.MergePassEnv(envvars.DefaultPassEnv(), c.PassEnv),
		Facts:          c.Facts,
		InstallCommand: c.InstallCommand,
	}
}

// Validate checks the rules the CUE schema does not express. Errors are
// cueutil.ValidationError values collected into an InvalidConfigError.
func (c *Config) Validate() error {
	file := c.source
	if file == "" {
		file = "<config>"
	}

	var errs []error
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		for _, err := range fieldErrs {
			errs = append(errs, &cueutil.ValidationError{FilePath: file, CUEPath: "ui.color_scheme", Message: err.Error()})
		}
	}
	if c.InstallCommand != "" && !strings.Contains(c.InstallCommand, packagesPlaceholder) {
		errs = append(errs, &cueutil.ValidationError{
			FilePath:   file,
			CUEPath:    "install_command",
			Message:    "must contain " + packagesPlaceholder,
			Suggestion: "for example: python -m pip install {opts} {packages}",
		})
	}

	known := markers.KnownFacts()
	for _, name := range slices.Sorted(maps.Keys(c.Facts)) {
		if !slices.Contains(known, name) {
			errs = append(errs, &cueutil.ValidationError{
				FilePath:   file,
				CUEPath:    "facts." + name,
				Message:    "unknown marker fact",
				Suggestion: "known facts: " + strings.Join(known, ", "),
			})
		}
	}

	for i, name := range c.DefaultEnvs {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, &cueutil.ValidationError{
				FilePath: file,
				CUEPath:  fmt.Sprintf("default_envs[%d]", i),
				Message:  "environment name must not be empty",
			})
		}
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultEnvs:    []string{},
		PassEnv:        []string{},
		InstallCommand: envspec.DefaultInstallCommand,
		Facts:          map[string]string{},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}
