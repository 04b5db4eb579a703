package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/abiosoft/ishell"
	gologrus "github.com/fclairamb/go-log/logrus"
	"github.com/spf13/afero"

	"github.com/OffBroadway/sdfatfs/pkg/diskio"
	"github.com/OffBroadway/sdfatfs/pkg/sdcard"
)

var (
	imagePath  string
	drive      uint
	busyPolls  int
	readOnly   bool
	multiBlock bool
)

func init() {
	flag.StringVar(&imagePath, "image", "sd.img", "SD card image")
	flag.UintVar(&drive, "drive", 1, "physical drive number")
	flag.IntVar(&busyPolls, "busy-polls", 2, "simulated busy polls after each transfer")
	flag.BoolVar(&readOnly, "readonly", false, "refuse writes")
	flag.BoolVar(&multiBlock, "multiblock", false, "accept multi-block transfers")
}

func main() {
	flag.Parse()

	logger := gologrus.New()
	opts := []sdcard.ImageOption{
		sdcard.WithBusyPolls(busyPolls),
		sdcard.WithImageLogger(logger),
	}
	if multiBlock {
		opts = append(opts, sdcard.WithMultiBlock())
	}
	card, err := sdcard.OpenImage(afero.NewOsFs(), imagePath, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer card.Close()

	diskOpts := []diskio.Option{diskio.WithLogger(logger)}
	if readOnly {
		diskOpts = append(diskOpts, diskio.WithReadOnly())
	}
	s := &session{
		drive: uint8(drive),
		disk:  diskio.New(card, diskOpts...),
		card:  card,
	}

	shell := ishell.New()
	shell.SetPrompt(fmt.Sprintf("[drive %d] > ", drive))
	for _, cmd := range s.commands() {
		shell.AddCmd(cmd)
	}

	// evaluate a single command when one is given on the command line
	if args := flag.Args(); len(args) > 0 {
		if err := shell.Process(args...); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	shell.Run()
}
