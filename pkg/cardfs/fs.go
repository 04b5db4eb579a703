package cardfs

import (
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	log "github.com/fclairamb/go-log"
	lognoop "github.com/fclairamb/go-log/noop"
	"github.com/spf13/afero"

	"github.com/OffBroadway/sdfatfs/pkg/diskio"
)

const imageExt = ".img"

var _ afero.Fs = (*Fs)(nil)

// Fs exposes every drive of a registry as a raw image file named
// "/<drive>.img". Drive images can be read and overwritten in place but
// never created, removed or resized.
type Fs struct {
	reg     *diskio.Registry
	logger  log.Logger
	mounted time.Time
}

// New returns an Fs serving the drives of reg.
func New(reg *diskio.Registry, logger log.Logger) *Fs {
	if logger == nil {
		logger = lognoop.NewNoOpLogger()
	}
	return &Fs{
		reg:     reg,
		logger:  logger,
		mounted: time.Now(),
	}
}

// ImageName returns the file name a drive is served under.
func ImageName(pdrv uint8) string {
	return strconv.Itoa(int(pdrv)) + imageExt
}

func (f *Fs) Name() string {
	return "cardfs"
}

// parse resolves name to either the root directory or a drive number.
func parse(name string) (root bool, pdrv uint8, ok bool) {
	p := path.Clean("/" + name)
	if p == "/" {
		return true, 0, true
	}
	base := strings.TrimPrefix(p, "/")
	if strings.Contains(base, "/") || !strings.HasSuffix(base, imageExt) {
		return false, 0, false
	}
	n, err := strconv.ParseUint(strings.TrimSuffix(base, imageExt), 10, 8)
	if err != nil {
		return false, 0, false
	}
	return false, uint8(n), true
}

// volume returns a byte view of the drive, initializing it when the
// geometry is not known yet.
func (f *Fs) volume(pdrv uint8) (*diskio.Volume, error) {
	dev, ok := f.reg.Lookup(pdrv)
	if !ok {
		return nil, os.ErrNotExist
	}
	if res := dev.Status(pdrv); res != diskio.ResultOK {
		return nil, res
	}
	vol, err := diskio.NewVolume(dev, pdrv)
	if err == nil {
		return vol, nil
	}
	if res := dev.Initialize(pdrv); res != diskio.ResultOK {
		return nil, res
	}
	return diskio.NewVolume(dev, pdrv)
}

func (f *Fs) info(pdrv uint8, vol *diskio.Volume) *FileInfo {
	info := &FileInfo{
		name:    ImageName(pdrv),
		size:    vol.Size(),
		modTime: f.mounted,
		mode:    0o644,
	}
	if dev, ok := f.reg.Lookup(pdrv); ok {
		if disk, ok := dev.(*diskio.Disk); ok {
			info.sys = disk.CardInfo()
		}
	}
	return info
}

func (f *Fs) rootInfo() *FileInfo {
	return &FileInfo{
		name:    "/",
		isDir:   true,
		modTime: f.mounted,
		mode:    os.ModeDir | 0o755,
	}
}

func (f *Fs) Open(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile opens a drive image. O_TRUNC is ignored since a card cannot
// change size; O_CREATE only succeeds for drives that exist.
func (f *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f.logger.Debug("OpenFile", "name", name, "flag", flag)
	root, pdrv, ok := parse(name)
	if !ok {
		if flag&os.O_CREATE != 0 {
			return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
		}
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	if root {
		if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
			return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
		}
		return &File{fs: f, name: "/", info: f.rootInfo()}, nil
	}

	vol, err := f.volume(pdrv)
	if err != nil {
		f.logger.Warn("Drive unavailable", "drive", pdrv, "err", err)
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	file := &File{
		fs:       f,
		name:     ImageName(pdrv),
		vol:      vol,
		info:     f.info(pdrv, vol),
		writable: flag&(os.O_WRONLY|os.O_RDWR) != 0,
	}
	if flag&os.O_APPEND != 0 {
		file.offset = vol.Size()
	}
	return file, nil
}

func (f *Fs) Stat(name string) (os.FileInfo, error) {
	root, pdrv, ok := parse(name)
	if !ok {
		return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrNotExist}
	}
	if root {
		return f.rootInfo(), nil
	}
	vol, err := f.volume(pdrv)
	if err != nil {
		return nil, &os.PathError{Op: "stat", Path: name, Err: err}
	}
	return f.info(pdrv, vol), nil
}

func (f *Fs) Create(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
}

func (f *Fs) Mkdir(name string, perm os.FileMode) error {
	return &os.PathError{Op: "mkdir", Path: name, Err: os.ErrPermission}
}

func (f *Fs) MkdirAll(path string, perm os.FileMode) error {
	if root, _, _ := parse(path); root {
		return nil
	}
	return &os.PathError{Op: "mkdir", Path: path, Err: os.ErrPermission}
}

func (f *Fs) Remove(name string) error {
	return &os.PathError{Op: "remove", Path: name, Err: os.ErrPermission}
}

func (f *Fs) RemoveAll(path string) error {
	return &os.PathError{Op: "remove", Path: path, Err: os.ErrPermission}
}

func (f *Fs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: os.ErrPermission}
}

func (f *Fs) Chmod(name string, mode os.FileMode) error {
	return &os.PathError{Op: "chmod", Path: name, Err: os.ErrPermission}
}

func (f *Fs) Chown(name string, uid, gid int) error {
	return &os.PathError{Op: "chown", Path: name, Err: os.ErrPermission}
}

// Chtimes is accepted and ignored; images carry no timestamps.
func (f *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return nil
}
