package cardfs

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/OffBroadway/sdfatfs/pkg/diskio"
)

type FileInfo struct {
	name    string
	size    int64
	isDir   bool
	modTime time.Time
	mode    os.FileMode
	sys     interface{}
}

func (fi FileInfo) Name() string       { return fi.name }
func (fi FileInfo) Size() int64        { return fi.size }
func (fi FileInfo) IsDir() bool        { return fi.isDir }
func (fi FileInfo) ModTime() time.Time { return fi.modTime }
func (fi FileInfo) Mode() os.FileMode  { return fi.mode }
func (fi FileInfo) Sys() interface{}   { return fi.sys }

var _ os.FileInfo = FileInfo{}

var _ afero.File = (*File)(nil)

// File is an open drive image, or the root directory when vol is nil.
type File struct {
	mu sync.Mutex

	fs       *Fs
	name     string
	info     *FileInfo
	vol      *diskio.Volume
	offset   int64
	writable bool
	closed   bool

	// directory listing position
	dirPos int
}

func (f *File) Name() string {
	return f.name
}

func (f *File) check(write bool) error {
	if f.closed {
		return os.ErrClosed
	}
	if f.vol == nil {
		return &os.PathError{Op: "read", Path: f.name, Err: errIsDir}
	}
	if write && !f.writable {
		return &os.PathError{Op: "write", Path: f.name, Err: os.ErrPermission}
	}
	return nil
}

func (f *File) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(false); err != nil {
		return 0, err
	}
	n, err := f.vol.ReadAt(p, f.offset)
	f.offset += int64(n)
	return n, err
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(false); err != nil {
		return 0, err
	}
	return f.vol.ReadAt(p, off)
}

func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(true); err != nil {
		return 0, err
	}
	n, err := f.vol.WriteAt(p, f.offset)
	f.offset += int64(n)
	return n, err
}

func (f *File) WriteAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(true); err != nil {
		return 0, err
	}
	return f.vol.WriteAt(p, off)
}

func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(false); err != nil {
		return 0, err
	}
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += f.offset
	case io.SeekEnd:
		offset += f.vol.Size()
	default:
		return 0, os.ErrInvalid
	}
	if offset < 0 {
		return 0, os.ErrInvalid
	}
	f.offset = offset
	return offset, nil
}

// Readdir lists the drive images in the root directory.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, os.ErrClosed
	}
	if f.vol != nil {
		return nil, &os.PathError{Op: "readdir", Path: f.name, Err: errNotDir}
	}

	var infos []os.FileInfo
	for _, pdrv := range f.fs.reg.Drives() {
		vol, err := f.fs.volume(pdrv)
		if err != nil {
			f.fs.logger.Warn("Skipping drive", "drive", pdrv, "err", err)
			continue
		}
		infos = append(infos, f.fs.info(pdrv, vol))
	}

	if f.dirPos >= len(infos) {
		if count > 0 {
			return nil, io.EOF
		}
		return []os.FileInfo{}, nil
	}
	infos = infos[f.dirPos:]
	if count > 0 && len(infos) > count {
		infos = infos[:count]
	}
	f.dirPos += len(infos)
	return infos, nil
}

func (f *File) Readdirnames(n int) ([]string, error) {
	infos, err := f.Readdir(n)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}

func (f *File) Stat() (os.FileInfo, error) {
	return f.info, nil
}

func (f *File) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return os.ErrClosed
	}
	if f.vol == nil {
		return nil
	}
	return f.vol.Sync()
}

// Truncate only accepts the current image size.
func (f *File) Truncate(size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(true); err != nil {
		return err
	}
	if size != f.vol.Size() {
		return &os.PathError{Op: "truncate", Path: f.name, Err: os.ErrPermission}
	}
	return nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return os.ErrClosed
	}
	f.closed = true
	if f.vol != nil && f.writable {
		return f.vol.Sync()
	}
	return nil
}
