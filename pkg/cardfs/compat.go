package cardfs

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/net/webdav"
)

var (
	errIsDir  = errors.New("is a directory")
	errNotDir = errors.New("not a directory")
)

// AsIO adapts f to the io/fs interfaces.
func AsIO(f *Fs) fs.FS {
	return afero.NewIOFS(f)
}

// WebDAV adapts an afero.Fs to webdav.FileSystem.
type WebDAV struct {
	afero.Fs
}

var _ webdav.FileSystem = (*WebDAV)(nil)

func AsWebDAV(f afero.Fs) *WebDAV {
	return &WebDAV{Fs: f}
}

func (w *WebDAV) Mkdir(ctx context.Context, name string, perm os.FileMode) error {
	return w.Fs.Mkdir(name, perm)
}

func (w *WebDAV) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (webdav.File, error) {
	return w.Fs.OpenFile(name, flag, perm)
}

func (w *WebDAV) RemoveAll(ctx context.Context, name string) error {
	return w.Fs.RemoveAll(name)
}

func (w *WebDAV) Rename(ctx context.Context, oldName, newName string) error {
	return w.Fs.Rename(oldName, newName)
}

func (w *WebDAV) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	return w.Fs.Stat(name)
}
