package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/OffBroadway/sdfatfs/pkg/diskio"
	"github.com/OffBroadway/sdfatfs/pkg/sdcard"
)

const drive = 1

func main() {
	var fs afero.Fs = afero.NewMemMapFs()
	path := "/sd.img"
	if len(os.Args) > 1 {
		fs, path = afero.NewOsFs(), os.Args[1]
	} else if err := sdcard.CreateImage(fs, path, 2048); err != nil {
		panic(err)
	}

	card, err := sdcard.OpenImage(fs, path, sdcard.WithBusyPolls(3))
	if err != nil {
		panic(err)
	}
	defer card.Close()

	disk := diskio.New(card)
	fmt.Println("STATUS:", disk.Status(drive))

	if res := disk.Initialize(drive); res != diskio.ResultOK {
		panic(res)
	}

	buf := make([]byte, 4)
	for _, cmd := range []diskio.Command{diskio.GetSectorCount, diskio.GetSectorSize, diskio.GetBlockSize} {
		if res := disk.Ioctl(drive, cmd, buf); res != diskio.ResultOK {
			panic(res)
		}
		fmt.Printf("%s: %d\n", cmd, binary.LittleEndian.Uint32(buf))
	}

	sector := make([]byte, 2*disk.SectorSize())
	copy(sector, "Hello.... World?\n")
	if res := disk.Write(drive, sector, 100, 2); res != diskio.ResultOK {
		panic(res)
	}

	data := make([]byte, len(sector))
	if res := disk.Read(drive, data, 100, 2); res != diskio.ResultOK {
		panic(res)
	}
	fmt.Printf("DATA: %q\n", data[:17])

	fmt.Println("Done!")
}
