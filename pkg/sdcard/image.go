package sdcard

import (
	"io"
	"os"
	"sync"
	"time"

	log "github.com/fclairamb/go-log"
	lognoop "github.com/fclairamb/go-log/noop"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// assert that ImageCard implements the optional driver capabilities
var (
	_ Driver       = (*ImageCard)(nil)
	_ MultiBlocker = (*ImageCard)(nil)
	_ Detector     = (*ImageCard)(nil)
)

// ImageCard simulates an SD card on top of an image file. Every transfer
// leaves the card busy for a configurable number of state polls before it
// returns to the transfer state, the same way real cards sit in the
// receiving/programming states after a block write.
type ImageCard struct {
	mu sync.Mutex

	file   afero.File
	blocks uint32

	busyPolls    int
	pending      int
	pendingState CardState

	writeProtect bool
	ejected      bool
	multiBlock   bool

	logger log.Logger
}

// ImageOption configures an ImageCard.
type ImageOption func(*ImageCard)

// WithBusyPolls sets how many CardState calls report a busy state after
// each transfer.
func WithBusyPolls(n int) ImageOption {
	return func(c *ImageCard) { c.busyPolls = n }
}

// WithWriteProtect makes every write fail, like a card with the lock
// switch engaged.
func WithWriteProtect() ImageOption {
	return func(c *ImageCard) { c.writeProtect = true }
}

// WithMultiBlock lets the card accept multi-block transfers.
func WithMultiBlock() ImageOption {
	return func(c *ImageCard) { c.multiBlock = true }
}

// WithImageLogger sets the card logger.
func WithImageLogger(logger log.Logger) ImageOption {
	return func(c *ImageCard) { c.logger = logger }
}

// OpenImage opens (or creates) the image at path on fs.
func OpenImage(fs afero.Fs, path string, opts ...ImageOption) (*ImageCard, error) {
	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open image %s", path)
	}
	card, err := NewImageCard(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return card, nil
}

// CreateImage creates a zero filled image of blocks logical blocks.
func CreateImage(fs afero.Fs, path string, blocks uint32) error {
	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "create image %s", path)
	}
	defer f.Close()
	if err := f.Truncate(int64(blocks) * DefaultBlockSize); err != nil {
		return errors.Wrapf(err, "size image %s", path)
	}
	return nil
}

// NewImageCard wraps an already open image file. Trailing bytes that do
// not fill a whole block are not addressable.
func NewImageCard(f afero.File, opts ...ImageOption) (*ImageCard, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat image")
	}
	card := &ImageCard{
		file:   f,
		blocks: uint32(info.Size() / DefaultBlockSize),
		logger: lognoop.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(card)
	}
	card.logger = card.logger.With("image", f.Name())
	return card, nil
}

// CardInfo returns the descriptor of the simulated card.
func (c *ImageCard) CardInfo() (CardInfo, Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ejected {
		return CardInfo{}, StatusError
	}
	cardType := CardSDHCSDXC
	if uint64(c.blocks)*DefaultBlockSize <= 2<<30 {
		cardType = CardSDSC
	}
	return CardInfo{
		CardType:     cardType,
		CardVersion:  1,
		BlockNbr:     c.blocks,
		BlockSize:    DefaultBlockSize,
		LogBlockNbr:  c.blocks,
		LogBlockSize: DefaultBlockSize,
	}, StatusOK
}

// ReadBlocks reads count blocks starting at block into buf.
func (c *ImageCard) ReadBlocks(buf []byte, block, count uint32, timeout time.Duration) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st := c.checkTransfer(len(buf), block, count); st != StatusOK {
		return st
	}
	length := int64(count) * DefaultBlockSize
	n, err := c.file.ReadAt(buf[:length], int64(block)*DefaultBlockSize)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == length) {
		c.logger.Error("Read failed", "block", block, "count", count, "err", err)
		return StatusError
	}
	c.busy(StateSending)
	return StatusOK
}

// WriteBlocks writes count blocks from buf starting at block.
func (c *ImageCard) WriteBlocks(buf []byte, block, count uint32, timeout time.Duration) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st := c.checkTransfer(len(buf), block, count); st != StatusOK {
		return st
	}
	if c.writeProtect {
		c.logger.Warn("Write to protected card", "block", block, "count", count)
		return StatusError
	}
	length := int64(count) * DefaultBlockSize
	if _, err := c.file.WriteAt(buf[:length], int64(block)*DefaultBlockSize); err != nil {
		c.logger.Error("Write failed", "block", block, "count", count, "err", err)
		return StatusError
	}
	c.busy(StateProgramming)
	return StatusOK
}

func (c *ImageCard) checkTransfer(buflen int, block, count uint32) Status {
	switch {
	case c.ejected:
		return StatusError
	case c.pending > 0:
		return StatusBusy
	case count == 0:
		return StatusError
	case count > 1 && !c.multiBlock:
		return StatusError
	case uint64(block)+uint64(count) > uint64(c.blocks):
		c.logger.Warn("Transfer out of range", "block", block, "count", count, "blocks", c.blocks)
		return StatusError
	case int64(buflen) < int64(count)*DefaultBlockSize:
		return StatusError
	}
	return StatusOK
}

func (c *ImageCard) busy(state CardState) {
	c.pending = c.busyPolls
	c.pendingState = state
}

// CardState reports the card state. Each call while the card is busy
// consumes one busy poll.
func (c *ImageCard) CardState() CardState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ejected {
		return StateDisconnected
	}
	if c.pending > 0 {
		c.pending--
		return c.pendingState
	}
	return StateTransfer
}

// MultiBlock reports whether multi-block transfers are accepted.
func (c *ImageCard) MultiBlock() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.multiBlock
}

// CardDetected reports whether the card is inserted.
func (c *ImageCard) CardDetected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.ejected
}

// Eject simulates pulling the card out of the slot.
func (c *ImageCard) Eject() {
	c.mu.Lock()
	c.ejected = true
	c.pending = 0
	c.mu.Unlock()
}

// Insert puts the card back.
func (c *ImageCard) Insert() {
	c.mu.Lock()
	c.ejected = false
	c.mu.Unlock()
}

// Close should be called when you're done with the ImageCard
func (c *ImageCard) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	c.ejected = true
	return err
}
