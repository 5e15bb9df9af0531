// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/envrun/envrun/internal/issue"
	"github.com/envrun/envrun/pkg/cueutil"

	"github.com/spf13/viper"
)

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath replaces ConfigDir when set.
		ConfigDirPath string
		// WorkDir is searched for LocalConfigFileName.
		WorkDir string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct{}
)

// NewProvider creates a Provider reading CUE files from disk.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads the configuration file chosen by locateConfigFile over the
// defaults, applies ENVRUN_ overrides and validates the result. No file at
// all is not an error.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load config canceled: %w", err)
	}

	v := newViper()

	path, err := locateConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'envrun config init --force' to start from the defaults").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.source = path

	if err := cfg.Validate(); err != nil {
		ec := issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path)
		var invalid *InvalidConfigError
		if errors.As(err, &invalid) {
			for _, fieldErr := range invalid.FieldErrors {
				var ve *cueutil.ValidationError
				if errors.As(fieldErr, &ve) && ve.Suggestion != "" {
					ec.WithSuggestion(ve.Suggestion)
				}
			}
		}
		return nil, ec.Wrap(err).BuildError()
	}

	return &cfg, nil
}

// locateConfigFile picks the file to load: the explicit path, the file in
// the config directory, then LocalConfigFileName in the working directory.
// It returns "" when no file exists and defaults apply.
func locateConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'envrun config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		cfgDir = dir
	}
	if p := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(p) {
		return p, nil
	}
	if p := filepath.Join(opts.WorkDir, LocalConfigFileName); fileExists(p) {
		return p, nil
	}
	return "", nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
// Fields are optional, so the file is decoded into a map rather than a struct
// and Viper's defaults fill the gaps.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	res, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*res.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
