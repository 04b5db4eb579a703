package diskio

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Volume is a byte addressed view of a drive. Unaligned writes are done
// as read-modify-write of the touched sectors.
type Volume struct {
	dev     BlockDevice
	pdrv    uint8
	ssize   int64
	sectors int64
}

var (
	_ io.ReaderAt = (*Volume)(nil)
	_ io.WriterAt = (*Volume)(nil)
)

// NewVolume queries the drive geometry through ioctl. The drive must
// already be initialized.
func NewVolume(dev BlockDevice, pdrv uint8) (*Volume, error) {
	var buf [4]byte
	if res := dev.Ioctl(pdrv, GetSectorSize, buf[:]); res != ResultOK {
		return nil, errors.Wrapf(res, "drive %d: sector size", pdrv)
	}
	ssize := int64(binary.LittleEndian.Uint32(buf[:]))
	if res := dev.Ioctl(pdrv, GetSectorCount, buf[:]); res != ResultOK {
		return nil, errors.Wrapf(res, "drive %d: sector count", pdrv)
	}
	sectors := int64(binary.LittleEndian.Uint32(buf[:]))
	if ssize == 0 {
		return nil, errors.Errorf("drive %d: zero sector size, drive not initialized", pdrv)
	}
	return &Volume{dev: dev, pdrv: pdrv, ssize: ssize, sectors: sectors}, nil
}

// Size returns the volume size in bytes.
func (v *Volume) Size() int64 {
	return v.ssize * v.sectors
}

// SectorSize returns the sector size in bytes.
func (v *Volume) SectorSize() int64 {
	return v.ssize
}

// Drive returns the physical drive number the volume reads from.
func (v *Volume) Drive() uint8 {
	return v.pdrv
}

func (v *Volume) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("diskio: negative offset")
	}
	if off >= v.Size() {
		return 0, io.EOF
	}
	want := len(p)
	if rem := v.Size() - off; int64(len(p)) > rem {
		p = p[:rem]
	}

	n := 0
	sbuf := make([]byte, v.ssize)
	for n < len(p) {
		pos := off + int64(n)
		sector := pos / v.ssize
		within := pos % v.ssize
		chunk := int(min(v.ssize-within, int64(len(p)-n)))

		if within == 0 && chunk == int(v.ssize) {
			// read whole sectors straight into p
			count := (len(p) - n) / int(v.ssize)
			if res := v.dev.Read(v.pdrv, p[n:n+count*int(v.ssize)], uint32(sector), uint32(count)); res != ResultOK {
				return n, errors.Wrapf(res, "read sector %d", sector)
			}
			n += count * int(v.ssize)
			continue
		}
		if res := v.dev.Read(v.pdrv, sbuf, uint32(sector), 1); res != ResultOK {
			return n, errors.Wrapf(res, "read sector %d", sector)
		}
		copy(p[n:n+chunk], sbuf[within:])
		n += chunk
	}
	if n < want {
		return n, io.EOF
	}
	return n, nil
}

func (v *Volume) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("diskio: negative offset")
	}
	if off+int64(len(p)) > v.Size() {
		return 0, errors.Errorf("diskio: write of %d bytes at %d exceeds volume size %d", len(p), off, v.Size())
	}

	n := 0
	sbuf := make([]byte, v.ssize)
	for n < len(p) {
		pos := off + int64(n)
		sector := pos / v.ssize
		within := pos % v.ssize
		chunk := int(min(v.ssize-within, int64(len(p)-n)))

		if within == 0 && chunk == int(v.ssize) {
			count := (len(p) - n) / int(v.ssize)
			if res := v.dev.Write(v.pdrv, p[n:n+count*int(v.ssize)], uint32(sector), uint32(count)); res != ResultOK {
				return n, errors.Wrapf(res, "write sector %d", sector)
			}
			n += count * int(v.ssize)
			continue
		}
		if res := v.dev.Read(v.pdrv, sbuf, uint32(sector), 1); res != ResultOK {
			return n, errors.Wrapf(res, "read sector %d", sector)
		}
		copy(sbuf[within:], p[n:n+chunk])
		if res := v.dev.Write(v.pdrv, sbuf, uint32(sector), 1); res != ResultOK {
			return n, errors.Wrapf(res, "write sector %d", sector)
		}
		n += chunk
	}
	return n, nil
}

// Sync flushes pending writes on the drive.
func (v *Volume) Sync() error {
	if res := v.dev.Ioctl(v.pdrv, CtrlSync, nil); res != ResultOK {
		return errors.Wrap(res, "sync")
	}
	return nil
}
