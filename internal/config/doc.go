// SPDX-License-Identifier: MPL-2.0

// Package config handles cats configuration using Viper with CUE as the file format.
//
// Configuration is loaded from the file named by --config, otherwise from
// config.cue in the platform config directory ($XDG_CONFIG_HOME/cats on Linux,
// ~/Library/Application Support/cats on macOS, %APPDATA%\cats on Windows),
// otherwise from ./cats.cue. A missing file is not an error. Environment
// variables prefixed with CATS_ override file values (CATS_LOG_LEVEL for
// log.level).
//
// The file is validated against an embedded CUE schema (config_schema.cue).
// Command-line flags are merged on top with Config.WithFlags, after which the
// Config is treated as immutable.
package config
