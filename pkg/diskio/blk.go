package diskio

// BlockDevice is the five call contract a FatFs style filesystem drives
// a physical drive through.
type BlockDevice interface {
	Status(pdrv uint8) Result
	Initialize(pdrv uint8) Result
	Read(pdrv uint8, buff []byte, sector uint32, count uint32) Result
	Write(pdrv uint8, buff []byte, sector uint32, count uint32) Result
	Ioctl(pdrv uint8, cmd Command, buff []byte) Result
}
