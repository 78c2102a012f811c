// Package local keeps transcripts in a directory on the local filesystem.
package local

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/storage"
)

const partialPrefix = ".upload-"

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return NewStorage(cfg.BasePath, cfg.MaxFileSize)
	})
}

// Storage serves objects from an os.Root, so no object path can reach
// outside the base directory.
type Storage struct {
	root    *os.Root
	maxSize int64
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage opens basePath, creating it if needed. maxSize <= 0 disables
// the upload size limit.
func NewStorage(basePath string, maxSize int64) (*Storage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: open base directory: %w", err)
	}
	return &Storage{root: root, maxSize: maxSize}, nil
}

func (s *Storage) BasePath() string { return s.root.Name() }

// Close releases the base directory handle.
func (s *Storage) Close() error { return s.root.Close() }

// name turns an object path into a slash-separated name relative to the
// root, with any ".." collapsed at the top.
func name(object string) (string, error) {
	n := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(object)), "/")
	if n == "" {
		return "", errors.InvalidInput("path", "empty object path")
	}
	return n, nil
}

// Upload stages the data in a hidden file beside the target and renames it
// over the target once complete.
func (s *Storage) Upload(_ context.Context, object string, r io.Reader) error {
	n, err := name(object)
	if err != nil {
		return err
	}
	dir := path.Dir(n)
	if err := s.root.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}

	partial := path.Join(dir, partialPrefix+uuid.NewString())
	f, err := s.root.OpenFile(partial, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return fmt.Errorf("storage: create file: %w", err)
	}
	defer s.root.Remove(partial) //nolint:errcheck // already renamed on success

	if s.maxSize > 0 {
		r = io.LimitReader(r, s.maxSize+1)
	}
	written, err := io.Copy(f, r)
	err = stderrors.Join(err, f.Close())
	switch {
	case err != nil:
		return fmt.Errorf("storage: write file: %w", err)
	case s.maxSize > 0 && written > s.maxSize:
		return errors.InvalidInput("file", fmt.Sprintf("larger than %d bytes", s.maxSize))
	}
	if err := s.root.Rename(partial, n); err != nil {
		return fmt.Errorf("storage: move file into place: %w", err)
	}
	return nil
}

func (s *Storage) Download(_ context.Context, object string) (io.ReadCloser, error) {
	n, err := name(object)
	if err != nil {
		return nil, err
	}
	f, err := s.root.Open(n)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.NotFound("file", object)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return f, nil
}

// Delete is a no-op for a missing object.
func (s *Storage) Delete(_ context.Context, object string) error {
	n, err := name(object)
	if err != nil {
		return err
	}
	if err := s.root.Remove(n); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

func (s *Storage) Exists(_ context.Context, object string) (bool, error) {
	n, err := name(object)
	if err != nil {
		return false, err
	}
	_, err = s.root.Stat(n)
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("storage: stat file: %w", err)
	}
}

// URL returns the file:// URL of the object.
func (s *Storage) URL(_ context.Context, object string) (string, error) {
	n, err := name(object)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.root.Name(), filepath.FromSlash(n))
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(full)}).String(), nil
}

// List walks the base directory for objects whose path starts with prefix,
// skipping uploads still in progress.
func (s *Storage) List(_ context.Context, prefix string) ([]storage.Object, error) {
	objects := []storage.Object{}
	err := fs.WalkDir(s.root.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), partialPrefix) || !strings.HasPrefix(p, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, storage.Object{Path: p, Size: info.Size(), Modified: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list files: %w", err)
	}
	slices.SortFunc(objects, func(a, b storage.Object) int { return strings.Compare(a.Path, b.Path) })
	return objects, nil
}
