package main

import (
	"errors"
	"flag"
	"time"

	"github.com/OffBroadway/sdfatfs/pkg/diskio"
)

type config struct {
	Image       string
	CreateBlock uint
	Drive       uint
	BusyPolls   int
	MultiBlock  bool
	ReadOnly    bool
	StrictIoctl bool

	Timeout      time.Duration
	PollInterval time.Duration
	PollTimeout  time.Duration

	FTPAddr    string
	WebDAVAddr string
	User       string
	Pass       string
	Debug      bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*config, error) {
	cfg := &config{}
	fs.StringVar(&cfg.Image, "image", "", "path of the SD card image")
	fs.UintVar(&cfg.CreateBlock, "create", 0, "create the image with this many 512 byte blocks if it does not exist")
	fs.UintVar(&cfg.Drive, "drive", 1, "physical drive number to register the card under")
	fs.IntVar(&cfg.BusyPolls, "busy-polls", 0, "simulated busy state polls after each transfer")
	fs.BoolVar(&cfg.MultiBlock, "multiblock", false, "let the card accept multi-block transfers")
	fs.BoolVar(&cfg.ReadOnly, "readonly", false, "refuse writes to the card")
	fs.BoolVar(&cfg.StrictIoctl, "strict-ioctl", false, "fail unknown ioctl commands")
	fs.DurationVar(&cfg.Timeout, "timeout", diskio.DefaultTimeout, "per-block driver timeout")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", 0, "card state poll interval, 0 spins")
	fs.DurationVar(&cfg.PollTimeout, "poll-timeout", 0, "give up waiting for the card after this long, 0 waits forever")
	fs.StringVar(&cfg.FTPAddr, "ftp", "0.0.0.0:7021", "FTP listen address, empty disables")
	fs.StringVar(&cfg.WebDAVAddr, "webdav", "", "WebDAV listen address, empty disables")
	fs.StringVar(&cfg.User, "user", "", "FTP user, empty allows anonymous access")
	fs.StringVar(&cfg.Pass, "pass", "", "FTP password")
	fs.BoolVar(&cfg.Debug, "debug", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.Image == "" {
		return nil, errors.New("-image is required")
	}
	if cfg.Drive > 255 {
		return nil, errors.New("-drive must be between 0 and 255")
	}
	if cfg.FTPAddr == "" && cfg.WebDAVAddr == "" {
		return nil, errors.New("nothing to serve: both -ftp and -webdav are empty")
	}
	return cfg, nil
}
