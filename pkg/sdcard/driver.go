package sdcard

import "time"

//go:generate mockgen -destination=mocks/driver_mocks.go github.com/OffBroadway/sdfatfs/pkg/sdcard Driver

// DefaultBlockSize is the logical block size of SD/SDHC/SDXC cards.
const DefaultBlockSize = 512

// Status is the result of a driver call.
type Status uint8

const (
	StatusOK Status = iota
	StatusError
	StatusBusy
	StatusTimeout
)

func (s Status) Error() string {
	var msg string
	switch s {
	case StatusOK:
		msg = "ok"
	case StatusError:
		msg = "transfer error"
	case StatusBusy:
		msg = "card busy"
	case StatusTimeout:
		msg = "timeout"
	default:
		msg = "unknown status"
	}
	return "sdcard: " + msg
}

// Err returns nil for StatusOK and s otherwise.
func (s Status) Err() error {
	if s == StatusOK {
		return nil
	}
	return s
}

// CardState is the state reported by the card's status register.
type CardState uint8

const (
	StateReady          CardState = 0x01
	StateIdentification CardState = 0x02
	StateStandby        CardState = 0x03
	StateTransfer       CardState = 0x04
	StateSending        CardState = 0x05
	StateReceiving      CardState = 0x06
	StateProgramming    CardState = 0x07
	StateDisconnected   CardState = 0x08
	StateError          CardState = 0xff
)

func (s CardState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateIdentification:
		return "identification"
	case StateStandby:
		return "standby"
	case StateTransfer:
		return "transfer"
	case StateSending:
		return "sending"
	case StateReceiving:
		return "receiving"
	case StateProgramming:
		return "programming"
	case StateDisconnected:
		return "disconnected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// CardType identifies the capacity class of the card.
type CardType uint8

const (
	CardSDSC CardType = iota
	CardSDHCSDXC
	CardSecured CardType = 3
)

// CardInfo describes the attached card. Only LogBlockNbr and LogBlockSize
// matter to block level consumers.
type CardInfo struct {
	CardType     CardType
	CardVersion  uint32
	Class        uint32
	RelCardAdd   uint32
	BlockNbr     uint32
	BlockSize    uint32
	LogBlockNbr  uint32
	LogBlockSize uint32
}

// Capacity returns the logical size of the card in bytes.
func (ci CardInfo) Capacity() uint64 {
	return uint64(ci.LogBlockNbr) * uint64(ci.LogBlockSize)
}

// StateReader reports the current card state.
type StateReader interface {
	CardState() CardState
}

// Driver is the card transfer driver a block device adapter forwards to.
type Driver interface {
	StateReader

	CardInfo() (CardInfo, Status)
	ReadBlocks(buf []byte, block, count uint32, timeout time.Duration) Status
	WriteBlocks(buf []byte, block, count uint32, timeout time.Duration) Status
}

// MultiBlocker is implemented by drivers that can move several blocks in
// one ReadBlocks or WriteBlocks call.
type MultiBlocker interface {
	MultiBlock() bool
}

// Detector is implemented by drivers wired to a card detect line.
type Detector interface {
	CardDetected() bool
}
