// SPDX-License-Identifier: MPL-2.0

// Package overwrite replaces a file with a transformation of its own content.
//
// The transformed bytes are written in full to a sibling temp file, which is
// then synced and renamed over the original. Until the rename succeeds the
// original is never opened for writing, so a failure at any point leaves it
// intact.
package overwrite

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/invowk/cats/internal/config"
	"github.com/invowk/cats/internal/issue"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const ownerWrite fs.FileMode = 0o200

// ErrNameTooLong is wrapped by the KindName error returned when no distinct
// temp path fits within the path length limit.
var ErrNameTooLong = errors.New("temp file name would replace the original")

type (
	// TransformFunc reads the original content from src and writes the
	// replacement content to dst.
	TransformFunc func(src io.Reader, dst io.Writer) error

	// Coordinator performs in-place rewrites on a filesystem.
	Coordinator struct {
		fs         afero.Fs
		maxPathLen int
		logger     *log.Logger
	}
)

// New returns a Coordinator working on fsys. Temp paths are limited to
// maxPathLen bytes. A nil logger discards log output.
func New(fsys afero.Fs, maxPathLen int, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Coordinator{fs: fsys, maxPathLen: maxPathLen, logger: logger}
}

// TempPath returns path with the temp suffix appended, cut to maxLen bytes.
// A cut that leaves nothing beyond the original path is a KindName error.
func TempPath(path string, maxLen int) (string, error) {
	temp := path + config.TempSuffix
	if len(temp) > maxLen {
		temp = temp[:max(maxLen, 0)]
	}
	if len(temp) <= len(path) {
		return "", issue.NewErrorContext().
			WithOperation("name temp file").
			WithResource(path).
			WithSuggestion(fmt.Sprintf("Paths longer than %d bytes cannot be overwritten; raise overwrite.max_path_length", maxLen-len(config.TempSuffix))).
			Wrap(ErrNameTooLong).
			BuildError(issue.KindName)
	}
	return temp, nil
}

// Rewrite replaces the content of path with what fn writes. The temp file
// takes the original's permission bits. Files without owner write permission
// are refused before anything is created.
func (c *Coordinator) Rewrite(path string, fn TransformFunc) error {
	temp, err := TempPath(path, c.maxPathLen)
	if err != nil {
		return err
	}

	info, err := c.fs.Stat(path)
	if err != nil {
		return issue.IO(path, err)
	}
	perm := info.Mode().Perm()
	if perm&ownerWrite == 0 {
		return issue.NewErrorContext().
			WithOperation("overwrite input").
			WithResource(path).
			Wrap(&fs.PathError{Op: "open", Path: path, Err: fs.ErrPermission}).
			BuildError(issue.KindIO)
	}

	if err := c.writeTemp(path, temp, perm, fn); err != nil {
		c.discard(temp)
		return err
	}

	if err := c.fs.Rename(temp, path); err != nil {
		c.discard(temp)
		return issue.NewErrorContext().
			WithOperation("replace input").
			WithResource(path).
			WithSuggestion("Check that the directory is writable").
			Wrap(err).
			BuildError(issue.KindIO)
	}

	c.logger.Debug("replaced file", "path", path, "temp", temp)
	return nil
}

// writeTemp runs fn from path into temp and makes temp durable. Both files are
// closed on return.
func (c *Coordinator) writeTemp(path, temp string, perm fs.FileMode, fn TransformFunc) (err error) {
	src, err := c.fs.Open(path)
	if err != nil {
		return issue.IO(path, err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil && err == nil {
			err = issue.IO(path, closeErr)
		}
	}()

	dst, err := c.fs.OpenFile(temp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return issue.IO(temp, err)
	}
	c.logger.Debug("writing temp file", "path", path, "temp", temp)

	if err := fn(src, dst); err != nil {
		_ = dst.Close()
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			return err
		}
		return issue.IO(path, err)
	}

	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		return issue.IO(temp, err)
	}
	if err := dst.Close(); err != nil {
		return issue.IO(temp, err)
	}
	return nil
}

func (c *Coordinator) discard(temp string) {
	if err := c.fs.Remove(temp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("could not remove temp file", "temp", temp, "err", err)
	}
}
