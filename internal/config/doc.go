// SPDX-License-Identifier: MPL-2.0

// Package config loads envrun's user configuration.
//
// The file format is CUE, validated against the embedded config_schema.cue
// and merged over Viper defaults. The file is read from the platform config
// directory (~/.config/envrun/config.cue on Linux, ~/Library/Application
// Support/envrun/config.cue on macOS, %APPDATA%\envrun\config.cue on Windows)
// or from envrun.cue in the working directory. Every key can be overridden
// with an ENVRUN_ environment variable, dots replaced by underscores
// (ENVRUN_UI_VERBOSE=true).
package config
