// Package storage keeps uploaded files on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bolsatrabajo/api/internal/apperror"
	uploadapp "github.com/bolsatrabajo/api/internal/upload/application"
)

// Local stores files under root/<dir>/<name>.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: abs}, nil
}

// path joins and checks that the result stays inside root.
func (l *Local) path(dir, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") ||
		strings.ContainsAny(dir, `\.`) {
		return "", apperror.Validation(apperror.CodeInvalidFilename, "")
	}
	full := filepath.Join(l.root, dir, name)
	if !strings.HasPrefix(full, l.root+string(filepath.Separator)) {
		return "", apperror.Validation(apperror.CodeInvalidFilename, "")
	}
	return full, nil
}

type localFile struct {
	*os.File
	size int64
}

func (f *localFile) Size() int64 { return f.size }

// Open returns NotFound when the file is missing, which happens while an
// owner replaces their upload.
func (l *Local) Open(dir, name string) (uploadapp.File, error) {
	full, err := l.path(dir, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.NotFound(apperror.CodeNotFound)
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, apperror.NotFound(apperror.CodeNotFound)
	}
	return &localFile{File: f, size: info.Size()}, nil
}

// Write copies r into a uuid-named temp file in the same directory and
// renames it into place, so readers never see a partial file.
func (l *Local) Write(ctx context.Context, dir, name string, r io.Reader) error {
	full, err := l.path(dir, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(full), ".tmp-"+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		f.Close()
		os.Remove(tmp)
	}

	if _, err := io.Copy(f, &contextReader{ctx: ctx, r: r}); err != nil {
		cleanup()
		return fmt.Errorf("write upload: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename upload: %w", err)
	}
	return nil
}

// Remove deletes the file; a file that is already gone is not an error.
func (l *Local) Remove(dir, name string) error {
	full, err := l.path(dir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
