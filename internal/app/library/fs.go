package library

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileSystem is the subset of filesystem operations the store needs.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(path string) ([]fs.DirEntry, error)
	Open(path string) (fs.File, error)
	// CreateExclusive creates an empty file and fails with fs.ErrExist if it
	// is already there.
	CreateExclusive(path string, perm fs.FileMode) error
	// WriteFileAtomic replaces the file content so readers see either the old
	// or the new content, never a partial write.
	WriteFileAtomic(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error
}

// OSFileSystem implements FileSystem on the local disk.
type OSFileSystem struct{}

// Stat implements FileSystem.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll implements FileSystem.
func (OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// ReadDir implements FileSystem.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// Open implements FileSystem.
func (OSFileSystem) Open(path string) (fs.File, error) {
	return os.Open(path)
}

// CreateExclusive implements FileSystem.
func (OSFileSystem) CreateExclusive(path string, perm fs.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	return f.Close()
}

// WriteFileAtomic writes to a hidden temp file next to path, syncs it and
// renames it over path.
func (OSFileSystem) WriteFileAtomic(path string, data []byte, perm fs.FileMode) (err error) {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.New().String()+".tmp")

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Remove implements FileSystem.
func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}
