package diskio

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	log "github.com/fclairamb/go-log"
	lognoop "github.com/fclairamb/go-log/noop"

	"github.com/OffBroadway/sdfatfs/pkg/sdcard"
)

// DefaultTimeout is the per-block timeout handed to the card driver.
const DefaultTimeout = 10000 * time.Millisecond

// assert that Disk implements the BlockDevice interface
var _ BlockDevice = (*Disk)(nil)

// Disk maps the diskio calls onto an SD card driver. The drive number
// passed to every call is ignored: one Disk drives one card. Use a
// Registry to serve several drives.
type Disk struct {
	mu sync.Mutex

	driver sdcard.Driver
	waiter Waiter
	logger log.Logger

	timeout     time.Duration
	readOnly    bool
	strictIoctl bool

	info        sdcard.CardInfo
	initialized bool
}

// Option configures a Disk.
type Option func(*Disk)

// WithTimeout sets the per-block driver timeout.
func WithTimeout(d time.Duration) Option {
	return func(disk *Disk) { disk.timeout = d }
}

// WithWaiter replaces the default busy poll.
func WithWaiter(w Waiter) Option {
	return func(disk *Disk) { disk.waiter = w }
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(disk *Disk) { disk.logger = logger }
}

// WithReadOnly refuses every Write with ResultWriteProtected.
func WithReadOnly() Option {
	return func(disk *Disk) { disk.readOnly = true }
}

// WithStrictIoctl makes unknown ioctl commands fail with
// ResultParameterError instead of succeeding silently.
func WithStrictIoctl() Option {
	return func(disk *Disk) { disk.strictIoctl = true }
}

// New returns a Disk forwarding to driver.
func New(driver sdcard.Driver, opts ...Option) *Disk {
	disk := &Disk{
		driver:  driver,
		waiter:  PollWaiter{},
		logger:  lognoop.NewNoOpLogger(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(disk)
	}
	return disk
}

// Status reports the drive status. Without a card detect signal from the
// driver there is nothing to probe and the drive is always reported OK.
func (d *Disk) Status(pdrv uint8) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if det, ok := d.driver.(sdcard.Detector); ok && !det.CardDetected() {
		d.logger.Debug("No card in slot", "drive", pdrv)
		return ResultNotReady
	}
	return ResultOK
}

// Initialize reads the card descriptor and caches the geometry.
func (d *Disk) Initialize(pdrv uint8) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	info, st := d.driver.CardInfo()
	if st != sdcard.StatusOK {
		d.logger.Error("Card info query failed", "drive", pdrv, "status", st)
		return ResultError
	}
	d.info = info
	d.initialized = true
	d.logger.Debug("Card initialized", "drive", pdrv,
		"blocks", info.LogBlockNbr, "blockSize", info.LogBlockSize)
	return ResultOK
}

// Read reads count sectors starting at sector into buff. On failure the
// sectors read before the failing one are left in buff.
func (d *Disk) Read(pdrv uint8, buff []byte, sector uint32, count uint32) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.transfer("read", d.driver.ReadBlocks, pdrv, buff, sector, count)
}

// Write writes count sectors from buff starting at sector.
func (d *Disk) Write(pdrv uint8, buff []byte, sector uint32, count uint32) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.readOnly {
		return ResultWriteProtected
	}
	return d.transfer("write", d.driver.WriteBlocks, pdrv, buff, sector, count)
}

type blockFunc func(buf []byte, block, count uint32, timeout time.Duration) sdcard.Status

func (d *Disk) transfer(op string, xfer blockFunc, pdrv uint8, buff []byte, sector, count uint32) Result {
	if count == 0 {
		return ResultOK
	}
	bs := int(d.info.LogBlockSize)
	if bs == 0 {
		bs = sdcard.DefaultBlockSize
	}
	if len(buff) < int(count)*bs {
		d.logger.Error("Buffer too small", "op", op, "drive", pdrv,
			"need", int(count)*bs, "got", len(buff))
		return ResultError
	}

	if mb, ok := d.driver.(sdcard.MultiBlocker); ok && count > 1 && mb.MultiBlock() {
		if st := xfer(buff[:int(count)*bs], sector, count, d.timeout); st != sdcard.StatusOK {
			d.logger.Error("Transfer failed", "op", op, "drive", pdrv,
				"sector", sector, "count", count, "status", st)
			return ResultError
		}
		return d.waitReady(op, pdrv, sector)
	}

	for i := uint32(0); i < count; i++ {
		block := buff[int(i)*bs : int(i+1)*bs]
		if st := xfer(block, sector+i, 1, d.timeout); st != sdcard.StatusOK {
			d.logger.Error("Transfer failed", "op", op, "drive", pdrv,
				"sector", sector+i, "status", st)
			return ResultError
		}
		if res := d.waitReady(op, pdrv, sector+i); res != ResultOK {
			return res
		}
	}
	return ResultOK
}

func (d *Disk) waitReady(op string, pdrv uint8, sector uint32) Result {
	if err := d.waiter.WaitReady(context.Background(), d.driver); err != nil {
		d.logger.Error("Card not ready after transfer", "op", op, "drive", pdrv,
			"sector", sector, "err", err)
		return ResultError
	}
	return ResultOK
}

// Ioctl answers geometry queries. Values are written to buff as a
// little-endian uint32.
func (d *Disk) Ioctl(pdrv uint8, cmd Command, buff []byte) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	var value uint32
	switch cmd {
	case CtrlSync:
		return ResultOK
	case GetSectorCount:
		value = d.info.LogBlockNbr
	case GetSectorSize:
		value = d.info.LogBlockSize
	case GetBlockSize:
		value = 1
	default:
		if d.strictIoctl {
			return ResultParameterError
		}
		d.logger.Warn("Unknown ioctl command accepted", "drive", pdrv, "cmd", uint8(cmd))
		return ResultOK
	}

	if len(buff) < 4 {
		return ResultParameterError
	}
	binary.LittleEndian.PutUint32(buff, value)
	return ResultOK
}

// SectorCount returns the cached number of sectors.
func (d *Disk) SectorCount() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info.LogBlockNbr
}

// SectorSize returns the cached sector size in bytes.
func (d *Disk) SectorSize() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info.LogBlockSize
}

// BlockSize returns the erase block size in sectors.
func (d *Disk) BlockSize() uint32 {
	return 1
}

// Initialized reports whether Initialize has succeeded at least once.
func (d *Disk) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// CardInfo returns the cached card descriptor.
func (d *Disk) CardInfo() sdcard.CardInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info
}
