package main

import (
	"bytes"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	lognoop "github.com/fclairamb/go-log/noop"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OffBroadway/sdfatfs/pkg/cardfs"
	"github.com/OffBroadway/sdfatfs/pkg/diskio"
	"github.com/OffBroadway/sdfatfs/pkg/sdcard"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags(flag.NewFlagSet("test", flag.ContinueOnError),
		[]string{"-image", "/tmp/sd.img", "-drive", "2", "-readonly", "-timeout", "2s"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sd.img", cfg.Image)
	assert.Equal(t, uint(2), cfg.Drive)
	assert.True(t, cfg.ReadOnly)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "0.0.0.0:7021", cfg.FTPAddr)
}

func TestParseFlagsErrors(t *testing.T) {
	_, err := parseFlags(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	assert.Error(t, err)

	_, err = parseFlags(flag.NewFlagSet("test", flag.ContinueOnError),
		[]string{"-image", "x", "-drive", "300"})
	assert.Error(t, err)

	_, err = parseFlags(flag.NewFlagSet("test", flag.ContinueOnError),
		[]string{"-image", "x", "-ftp", ""})
	assert.Error(t, err)
}

func TestOpenDiskCreatesImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := &config{
		Image:       "/sd.img",
		CreateBlock: 32,
		BusyPolls:   2,
		Timeout:     diskio.DefaultTimeout,
		ReadOnly:    true,
	}
	card, disk, err := openDisk(fs, cfg, lognoop.NewNoOpLogger())
	require.NoError(t, err)
	defer card.Close()

	require.Equal(t, diskio.ResultOK, disk.Initialize(1))
	assert.Equal(t, uint32(32), disk.SectorCount())
	assert.Equal(t, diskio.ResultWriteProtected, disk.Write(1, make([]byte, sdcard.DefaultBlockSize), 0, 1))
}

func TestFTPAuth(t *testing.T) {
	fs := afero.NewMemMapFs()
	drv := &FTPServer{FileSystem: fs, User: "card", Pass: "secret", Logger: lognoop.NewNoOpLogger()}

	_, err := drv.AuthUser(nil, "card", "wrong")
	assert.ErrorIs(t, err, errBadCredentials)

	client, err := drv.AuthUser(nil, "card", "secret")
	require.NoError(t, err)
	assert.Equal(t, fs, client)

	anon := &FTPServer{FileSystem: fs, Logger: lognoop.NewNoOpLogger()}
	_, err = anon.AuthUser(nil, "anyone", "")
	assert.NoError(t, err)

	_, err = anon.GetTLSConfig()
	assert.Error(t, err)
}

func TestWebDAVGet(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, sdcard.CreateImage(mem, "/sd.img", 4))
	card, err := sdcard.OpenImage(mem, "/sd.img")
	require.NoError(t, err)
	defer card.Close()

	payload := bytes.Repeat([]byte{0x42}, sdcard.DefaultBlockSize)
	require.Equal(t, sdcard.StatusOK, card.WriteBlocks(payload, 1, 1, 0))

	reg := diskio.NewRegistry()
	reg.Register(1, diskio.New(card))

	srv := httptest.NewServer(newWebDAVServer(cardfs.New(reg, nil), io.Discard).Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + webdavPrefix + "/1.img")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Len(t, body, 4*sdcard.DefaultBlockSize)
	assert.Equal(t, payload, body[sdcard.DefaultBlockSize:2*sdcard.DefaultBlockSize])
}
