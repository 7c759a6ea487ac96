// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/invowk/cats/internal/issue"
	"github.com/invowk/cats/internal/testutil"
	"github.com/invowk/cats/pkg/platform"
	"github.com/invowk/cats/pkg/types"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Output.BufferSize != DefaultBufferSize {
		t.Errorf("Output.BufferSize = %d, want %d", cfg.Output.BufferSize, DefaultBufferSize)
	}
	if cfg.Rewrite.MaxPathLength != DefaultMaxPathLength {
		t.Errorf("Rewrite.MaxPathLength = %d, want %d", cfg.Rewrite.MaxPathLength, DefaultMaxPathLength)
	}
	if cfg.Log.Level != LogLevelWarn {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, LogLevelWarn)
	}
	if cfg.Verbose || cfg.LineNumbers || cfg.ShowControl || cfg.SuppressBlank || cfg.Unbuffered || cfg.Overwrite {
		t.Errorf("DefaultConfig() has toggles enabled: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestLoad_ConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := writeConfig(t, dir, `
line_numbers: true
output: buffer_size: 64
log: level: "debug"
`)

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if !cfg.LineNumbers {
		t.Error("LineNumbers = false, want true")
	}
	if cfg.Output.BufferSize != 64 {
		t.Errorf("Output.BufferSize = %d, want 64", cfg.Output.BufferSize)
	}
	if cfg.Log.Level != LogLevelDebug {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Rewrite.MaxPathLength != DefaultMaxPathLength {
		t.Errorf("Rewrite.MaxPathLength = %d, want default", cfg.Rewrite.MaxPathLength)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "overwrite: max_path_length: 128\n")

	cfg, got, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: types.FilesystemPath(path),
		ConfigDirPath:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
	if cfg.Rewrite.MaxPathLength != 128 {
		t.Errorf("Rewrite.MaxPathLength = %d, want 128", cfg.Rewrite.MaxPathLength)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: types.FilesystemPath(missing)})
	if !errors.Is(err, issue.ErrSetup) {
		t.Fatalf("loadWithOptions() error = %v, want a setup error", err)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "wrong type", content: "verbose: \"yes\"\n"},
		{name: "unknown log level", content: "log: level: \"trace\"\n"},
		{name: "unknown field", content: "colour: true\n"},
		{name: "syntax error", content: "output: {\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
			if !errors.Is(err, issue.ErrSetup) {
				t.Errorf("loadWithOptions() error = %v, want a setup error", err)
			}
		})
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := loadWithOptions(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("loadWithOptions() error = %v, want context.Canceled", err)
	}
}

// Not parallel: mutates the process environment.
func TestLoad_EnvOverride(t *testing.T) {
	defer testutil.MustSetenv(t, "CATS_VERBOSE", "true")()
	defer testutil.MustSetenv(t, "CATS_OUTPUT_BUFFER_SIZE", "4096")()

	dir := t.TempDir()
	writeConfig(t, dir, "output: buffer_size: 64\n")

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true from CATS_VERBOSE")
	}
	if cfg.Output.BufferSize != 4096 {
		t.Errorf("Output.BufferSize = %d, want 4096 from CATS_OUTPUT_BUFFER_SIZE", cfg.Output.BufferSize)
	}
}

func TestProvider_LoadValidates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "output: buffer_size: 0\n")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if !errors.Is(err, ErrInvalidBufferSize) {
		t.Fatalf("Load() error = %v, want ErrInvalidBufferSize", err)
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("Load() error is not an *issue.ActionableError")
	}
	if len(ae.Suggestions) == 0 || ae.Suggestions[0] != "Try running with -u option." {
		t.Errorf("Suggestions = %q", ae.Suggestions)
	}
}

func TestConfig_WithFlags(t *testing.T) {
	t.Parallel()

	base := DefaultConfig()
	base.ShowControl = true

	got := base.WithFlags(Flags{LineNumbers: true, Overwrite: true})
	if !got.ShowControl {
		t.Error("ShowControl from the file was cleared")
	}
	if !got.LineNumbers || !got.Overwrite {
		t.Errorf("flags not applied: %+v", got)
	}
	if got.Verbose || got.SuppressBlank || got.Unbuffered {
		t.Errorf("unset flags enabled toggles: %+v", got)
	}
	if base.LineNumbers {
		t.Error("WithFlags() mutated the receiver")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "negative buffer", mutate: func(c *Config) { c.Output.BufferSize = -1 }, wantErr: ErrInvalidBufferSize},
		{name: "tiny max path", mutate: func(c *Config) { c.Rewrite.MaxPathLength = len(TempSuffix) }, wantErr: ErrInvalidMaxPathLength},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, issue.ErrSetup) {
				t.Errorf("Validate() = %v, want a setup error", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Parallel()

	dir, err := ConfigDir()
	if err != nil {
		t.Skipf("no config directory on this host: %v", err)
	}
	if filepath.Base(dir) != AppName {
		t.Errorf("ConfigDir() = %q, want a %q directory", dir, AppName)
	}
}

// Not parallel: changes the working directory.
func TestLoad_LocalFile(t *testing.T) {
	work := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(work, LocalConfigFile), []byte("show_control: true\n"), 0o644)
	defer testutil.MustChdir(t, work)()

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != LocalConfigFile {
		t.Errorf("path = %q, want %q", path, LocalConfigFile)
	}
	if !cfg.ShowControl {
		t.Error("ShowControl = false, want true from the local file")
	}
}

// Not parallel: changes the working directory.
func TestLoad_ConfigDirBeforeLocalFile(t *testing.T) {
	work := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(work, LocalConfigFile), []byte("show_control: true\n"), 0o644)
	defer testutil.MustChdir(t, work)()

	dir := t.TempDir()
	want := writeConfig(t, dir, "suppress_blank: true\n")

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if cfg.ShowControl || !cfg.SuppressBlank {
		t.Errorf("config = %+v, want only SuppressBlank from the config dir", cfg)
	}
}

// Not parallel: changes the working directory.
func TestLoad_EmptyLocalFile(t *testing.T) {
	work := t.TempDir()
	f, err := os.Create(filepath.Join(work, LocalConfigFile))
	if err != nil {
		t.Fatalf("failed to create config: %v", err)
	}
	testutil.MustClose(t, f)
	defer testutil.MustChdir(t, work)()

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

// Not parallel: mutates the process environment.
func TestConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == platform.Windows || runtime.GOOS == platform.Darwin {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}

	home := t.TempDir()
	defer testutil.SetHomeDir(t, home)()

	t.Run("home fallback", func(t *testing.T) {
		defer testutil.MustUnsetenv(t, "XDG_CONFIG_HOME")()

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if want := filepath.Join(home, ".config", AppName); dir != want {
			t.Errorf("ConfigDir() = %q, want %q", dir, want)
		}
	})

	t.Run("XDG_CONFIG_HOME", func(t *testing.T) {
		xdg := filepath.Join(home, "xdg")
		defer testutil.MustSetenv(t, "XDG_CONFIG_HOME", xdg)()

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if want := filepath.Join(xdg, AppName); dir != want {
			t.Errorf("ConfigDir() = %q, want %q", dir, want)
		}
	})
}
