// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/envrun/envrun/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "envrun"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is looked up in the working directory when the
	// config directory holds no file.
	LocalConfigFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment variable overrides.
	EnvPrefix = "ENVRUN"
)

// ErrConfigExists is returned by WriteDefaultConfig when the target exists.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the envrun configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string
	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultConfigPath returns the config file path inside ConfigDir.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// newViper returns a Viper instance holding the defaults and reading
// ENVRUN_ overrides.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("descriptor", defaults.Descriptor)
	v.SetDefault("default_envs", defaults.DefaultEnvs)
	v.SetDefault("pass_env", defaults.PassEnv)
	v.SetDefault("install_command", defaults.InstallCommand)
	v.SetDefault("facts", defaults.Facts)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// WriteDefaultConfig writes the default configuration to path, creating its
// directory. An existing file is kept unless force is set.
func WriteDefaultConfig(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a config.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// envrun configuration\n")
	sb.WriteString("// Every field is optional; ENVRUN_<KEY> environment variables override them.\n\n")

	if cfg.Descriptor != "" {
		fmt.Fprintf(&sb, "descriptor: %q\n", cfg.Descriptor)
	} else {
		sb.WriteString("// descriptor: \"tox.ini\"\n")
	}

	writeList(&sb, "default_envs", cfg.DefaultEnvs)
	writeList(&sb, "pass_env", cfg.PassEnv)
	fmt.Fprintf(&sb, "install_command: %q\n", cfg.InstallCommand)

	if len(cfg.Facts) > 0 {
		sb.WriteString("\nfacts: {\n")
		for _, k := range slices.Sorted(maps.Keys(cfg.Facts)) {
			fmt.Fprintf(&sb, "\t%s: %q\n", k, cfg.Facts[k])
		}
		sb.WriteString("}\n")
	}

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeList(sb *strings.Builder, key string, items []string) {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	fmt.Fprintf(sb, "%s: [%s]\n", key, strings.Join(quoted, ", "))
}
