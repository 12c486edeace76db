package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/spf13/afero"
)

// Store is the named-file storage backing sample history, device config and
// the root certificate. It offers no atomicity across operations.
type Store interface {
	Exists(name string) bool
	Open(name string) (io.ReadCloser, error)
	Create(name string) (io.WriteCloser, error)
	Rename(src, dst string) error
	// Remove deletes name; a missing file is not an error.
	Remove(name string) error
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	List() ([]FileInfo, error)
}

// FileInfo describes a stored file for directory listings.
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

const filePerm = 0o644

// FS implements Store on top of an afero filesystem.
type FS struct {
	fs afero.Fs
}

var _ Store = (*FS)(nil)

// New wraps an existing afero filesystem.
func New(fsys afero.Fs) *FS {
	return &FS{fs: fsys}
}

// NewDir returns a Store rooted at dir on the OS filesystem, creating dir if needed.
func NewDir(dir string) (*FS, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %q: %w", dir, err)
	}
	return New(afero.NewBasePathFs(osFs, dir)), nil
}

// NewMemory returns an in-memory Store.
func NewMemory() *FS {
	return New(afero.NewMemMapFs())
}

// clean maps a bare file name onto the store root.
func clean(name string) string {
	return path.Join("/", name)
}

func (s *FS) Exists(name string) bool {
	ok, err := afero.Exists(s.fs, clean(name))
	return err == nil && ok
}

func (s *FS) Open(name string) (io.ReadCloser, error) {
	f, err := s.fs.Open(clean(name))
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	return f, nil
}

// Create truncates or creates name for writing. Close syncs before closing.
func (s *FS) Create(name string) (io.WriteCloser, error) {
	f, err := s.fs.OpenFile(clean(name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", name, err)
	}
	return &syncFile{File: f}, nil
}

func (s *FS) Rename(src, dst string) error {
	if err := s.fs.Rename(clean(src), clean(dst)); err != nil {
		return fmt.Errorf("rename %q to %q: %w", src, dst, err)
	}
	return nil
}

func (s *FS) Remove(name string) error {
	err := s.fs.Remove(clean(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	return nil
}

func (s *FS) ReadFile(name string) ([]byte, error) {
	b, err := afero.ReadFile(s.fs, clean(name))
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", name, err)
	}
	return b, nil
}

func (s *FS) WriteFile(name string, data []byte) error {
	if err := afero.WriteFile(s.fs, clean(name), data, filePerm); err != nil {
		return fmt.Errorf("write %q: %w", name, err)
	}
	return nil
}

// List returns the files at the store root sorted by name.
func (s *FS) List() ([]FileInfo, error) {
	entries, err := afero.ReadDir(s.fs, "/")
	if err != nil {
		return nil, fmt.Errorf("list store: %w", err)
	}
	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, FileInfo{Name: e.Name(), Size: e.Size()})
	}
	return out, nil
}

type syncFile struct {
	afero.File
}

func (f *syncFile) Close() error {
	if err := f.File.Sync(); err != nil {
		_ = f.File.Close()
		return fmt.Errorf("sync %q: %w", f.File.Name(), err)
	}
	return f.File.Close()
}
