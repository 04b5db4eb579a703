package main

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/OffBroadway/sdfatfs/pkg/diskio"
	"github.com/OffBroadway/sdfatfs/pkg/sdcard"
)

// session is the state shared by all shell commands.
type session struct {
	drive uint8
	disk  *diskio.Disk
	card  *sdcard.ImageCard
}

var ioctlNames = map[string]diskio.Command{
	"sync":    diskio.CtrlSync,
	"count":   diskio.GetSectorCount,
	"size":    diskio.GetSectorSize,
	"erase":   diskio.GetBlockSize,
	"sectors": diskio.GetSectorCount,
}

func parseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 0, bits)
}

func (s *session) status() string {
	return s.disk.Status(s.drive).Error()
}

func (s *session) initialize() string {
	res := s.disk.Initialize(s.drive)
	if res != diskio.ResultOK {
		return res.Error()
	}
	info := s.disk.CardInfo()
	return fmt.Sprintf("%s\nsectors=%d sectorSize=%d capacity=%d", res.Error(),
		info.LogBlockNbr, info.LogBlockSize, info.Capacity())
}

// read SECTOR [COUNT]
func (s *session) read(args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("SECTOR required")
	}
	sector, err := parseUint(args[0], 32)
	if err != nil {
		return "", fmt.Errorf("invalid SECTOR: %v", err)
	}
	count := uint64(1)
	if len(args) > 1 {
		if count, err = parseUint(args[1], 32); err != nil {
			return "", fmt.Errorf("invalid COUNT: %v", err)
		}
	}
	buf := make([]byte, int(count)*int(s.sectorSize()))
	res := s.disk.Read(s.drive, buf, uint32(sector), uint32(count))
	if res != diskio.ResultOK {
		return "", res
	}
	return hex.Dump(buf), nil
}

// write SECTOR BYTE [COUNT]
func (s *session) write(args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("SECTOR and BYTE required")
	}
	sector, err := parseUint(args[0], 32)
	if err != nil {
		return "", fmt.Errorf("invalid SECTOR: %v", err)
	}
	fill, err := parseUint(args[1], 8)
	if err != nil {
		return "", fmt.Errorf("invalid BYTE: %v", err)
	}
	count := uint64(1)
	if len(args) > 2 {
		if count, err = parseUint(args[2], 32); err != nil {
			return "", fmt.Errorf("invalid COUNT: %v", err)
		}
	}
	buf := make([]byte, int(count)*int(s.sectorSize()))
	for i := range buf {
		buf[i] = byte(fill)
	}
	res := s.disk.Write(s.drive, buf, uint32(sector), uint32(count))
	if res != diskio.ResultOK {
		return "", res
	}
	return fmt.Sprintf("wrote %d sector(s) at %d", count, sector), nil
}

// ioctl NAME|CODE
func (s *session) ioctl(args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("COMMAND required")
	}
	cmd, ok := ioctlNames[strings.ToLower(args[0])]
	if !ok {
		code, err := parseUint(args[0], 8)
		if err != nil {
			return "", fmt.Errorf("unknown COMMAND %q", args[0])
		}
		cmd = diskio.Command(code)
	}
	buf := make([]byte, 4)
	res := s.disk.Ioctl(s.drive, cmd, buf)
	if res != diskio.ResultOK {
		return "", res
	}
	return fmt.Sprintf("%s = %d", cmd, binary.LittleEndian.Uint32(buf)), nil
}

func (s *session) sectorSize() uint32 {
	if size := s.disk.SectorSize(); size != 0 {
		return size
	}
	return sdcard.DefaultBlockSize
}

func (s *session) commands() []*ishell.Cmd {
	result := func(fn func([]string) (string, error)) func(c *ishell.Context) {
		return func(c *ishell.Context) {
			out, err := fn(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(out)
		}
	}
	return []*ishell.Cmd{
		{
			Name: "status",
			Help: "query drive status",
			Func: func(c *ishell.Context) { c.Println(s.status()) },
		},
		{
			Name: "init",
			Help: "initialize the drive and show its geometry",
			Func: func(c *ishell.Context) { c.Println(s.initialize()) },
		},
		{
			Name: "read",
			Help: "read SECTOR [COUNT]",
			Func: result(s.read),
		},
		{
			Name: "write",
			Help: "write SECTOR BYTE [COUNT], filling sectors with BYTE",
			Func: result(s.write),
		},
		{
			Name: "ioctl",
			Help: "ioctl sync|count|size|erase|CODE",
			Func: result(s.ioctl),
		},
		{
			Name: "eject",
			Help: "pull the simulated card",
			Func: func(c *ishell.Context) { s.card.Eject(); c.Println("ejected") },
		},
		{
			Name: "insert",
			Help: "insert the simulated card",
			Func: func(c *ishell.Context) { s.card.Insert(); c.Println("inserted") },
		},
	}
}
