// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/invowk/cats/internal/issue"
)

const (
	// LogLevelDebug enables developer diagnostics.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs progress messages.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs only problems that do not stop processing.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only failures.
	LogLevelError LogLevel = "error"

	// DefaultBufferSize is the standard output buffer size in bytes.
	DefaultBufferSize = 1024
	// DefaultMaxPathLength bounds the temp-file path built for in-place rewrites.
	DefaultMaxPathLength = 4096
	// TempSuffix is appended to an input path to name its rewrite temp file.
	TempSuffix = ".catstemp"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidBufferSize is returned when output.buffer_size is not positive.
	ErrInvalidBufferSize = errors.New("invalid buffer size")
	// ErrInvalidMaxPathLength is returned when overwrite.max_path_length cannot
	// hold the temp suffix.
	ErrInvalidMaxPathLength = errors.New("invalid max path length")
)

type (
	// LogLevel selects the minimum level of developer log messages.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// Config holds the settings of one cats invocation.
	Config struct {
		// Verbose prints a per-file summary to standard error.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// LineNumbers prefixes each output line with its number.
		LineNumbers bool `json:"line_numbers" mapstructure:"line_numbers"`
		// ShowControl renders control bytes in caret notation.
		ShowControl bool `json:"show_control" mapstructure:"show_control"`
		// SuppressBlank drops blank lines.
		SuppressBlank bool `json:"suppress_blank" mapstructure:"suppress_blank"`
		// Unbuffered flushes standard output after every line.
		Unbuffered bool `json:"unbuffered" mapstructure:"unbuffered"`
		// Overwrite rewrites each input in place. It is only ever set from the
		// command line.
		Overwrite bool `json:"-" mapstructure:"-"`
		// Output configures standard output.
		Output OutputConfig `json:"output" mapstructure:"output"`
		// Rewrite configures in-place rewrites.
		Rewrite RewriteConfig `json:"overwrite" mapstructure:"overwrite"`
		// Log configures developer logging.
		Log LogConfig `json:"log" mapstructure:"log"`
	}

	// OutputConfig configures standard output.
	OutputConfig struct {
		// BufferSize is the standard output buffer size in bytes.
		BufferSize int `json:"buffer_size" mapstructure:"buffer_size"`
	}

	// RewriteConfig configures in-place rewrites.
	RewriteConfig struct {
		// MaxPathLength is the longest temp-file path that can be built.
		MaxPathLength int `json:"max_path_length" mapstructure:"max_path_length"`
	}

	// LogConfig configures developer logging.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// Flags are the toggles parsed from the command line.
	Flags struct {
		Verbose       bool
		LineNumbers   bool
		ShowControl   bool
		SuppressBlank bool
		Unbuffered    bool
		Overwrite     bool
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{BufferSize: DefaultBufferSize},
		Rewrite: RewriteConfig{
			MaxPathLength: DefaultMaxPathLength,
		},
		Log: LogConfig{Level: LogLevelWarn},
	}
}

// WithFlags returns a copy of c with the command-line toggles applied. Flags
// only turn toggles on; a toggle enabled by the file stays enabled.
func (c Config) WithFlags(f Flags) Config {
	c.Verbose = c.Verbose || f.Verbose
	c.LineNumbers = c.LineNumbers || f.LineNumbers
	c.ShowControl = c.ShowControl || f.ShowControl
	c.SuppressBlank = c.SuppressBlank || f.SuppressBlank
	c.Unbuffered = c.Unbuffered || f.Unbuffered
	c.Overwrite = f.Overwrite
	return c
}

// Validate reports settings that make output setup impossible as KindSetup errors.
func (c Config) Validate() error {
	if err := c.Log.Level.Validate(); err != nil {
		return issue.NewErrorContext().
			WithOperation("configure logging").
			WithSuggestion("Use one of: debug, info, warn, error").
			Wrap(err).
			BuildError(issue.KindSetup)
	}

	if c.Output.BufferSize <= 0 {
		return issue.NewErrorContext().
			WithOperation("configure output").
			WithSuggestion("Try running with -u option.").
			Wrap(fmt.Errorf("could not allocate output buffer of size %d: %w", c.Output.BufferSize, ErrInvalidBufferSize)).
			BuildError(issue.KindSetup)
	}

	if c.Rewrite.MaxPathLength <= len(TempSuffix) {
		return issue.NewErrorContext().
			WithOperation("configure overwrite").
			Wrap(fmt.Errorf("max path length %d cannot hold the %q suffix: %w",
				c.Rewrite.MaxPathLength, TempSuffix, ErrInvalidMaxPathLength)).
			BuildError(issue.KindSetup)
	}

	return nil
}

// String returns the level name.
func (l LogLevel) String() string { return string(l) }

// Validate returns an error if the LogLevel is not one of the defined levels.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return "invalid log level " + strconv.Quote(string(e.Value))
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }
