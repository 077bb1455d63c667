package filesystem

import (
	"io/fs"
	"os"

	"github.com/arthur-debert/silkmod/pkg/types"
)

// osFS passes every call straight to package os
type osFS struct{}

// NewOS creates a new OS filesystem implementation
func NewOS() types.FS {
	return osFS{}
}

// IsOS reports whether fsys is the one returned by NewOS
func IsOS(fsys types.FS) bool {
	_, ok := fsys.(osFS)
	return ok
}

func (osFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (osFS) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }
func (osFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (osFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (osFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }
func (osFS) Remove(name string) error                     { return os.Remove(name) }
func (osFS) RemoveAll(path string) error                  { return os.RemoveAll(path) }
func (osFS) Rename(oldpath, newpath string) error         { return os.Rename(oldpath, newpath) }
