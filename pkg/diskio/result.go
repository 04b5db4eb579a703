package diskio

// Result is the outcome of a diskio call, numbered like FatFs DRESULT.
type Result uint8

const (
	ResultOK             Result = 0 /* (0) Succeeded */
	ResultError          Result = 1
	ResultWriteProtected Result = 2
	ResultNotReady       Result = 3
	ResultParameterError Result = 4
)

func (r Result) Error() string {
	var msg string
	switch r {
	case ResultOK:
		msg = "(0) Succeeded"
	case ResultError:
		msg = "(1) A hard error occurred during the read/write operation"
	case ResultWriteProtected:
		msg = "(2) The medium is write protected"
	case ResultNotReady:
		msg = "(3) The device has not been initialized"
	case ResultParameterError:
		msg = "(4) Invalid parameter"
	default:
		msg = "unknown disk result"
	}
	return "diskio: " + msg
}

// Err returns nil for ResultOK and r otherwise.
func (r Result) Err() error {
	if r == ResultOK {
		return nil
	}
	return r
}

// Command is an ioctl control code.
type Command uint8

const (
	CtrlSync       Command = 0 /* Complete pending write process */
	GetSectorCount Command = 1 /* Get media size */
	GetSectorSize  Command = 2 /* Get sector size */
	GetBlockSize   Command = 3 /* Get erase block size in unit of sector */
)

func (c Command) String() string {
	switch c {
	case CtrlSync:
		return "CTRL_SYNC"
	case GetSectorCount:
		return "GET_SECTOR_COUNT"
	case GetSectorSize:
		return "GET_SECTOR_SIZE"
	case GetBlockSize:
		return "GET_BLOCK_SIZE"
	default:
		return "UNKNOWN"
	}
}
