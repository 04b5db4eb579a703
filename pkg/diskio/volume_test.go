package diskio

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OffBroadway/sdfatfs/pkg/sdcard"
)

func newImageDisk(t *testing.T, blocks uint32, opts ...sdcard.ImageOption) (*Disk, afero.Fs) {
	fs := afero.NewMemMapFs()
	require.NoError(t, sdcard.CreateImage(fs, "/sd.img", blocks))
	card, err := sdcard.OpenImage(fs, "/sd.img", append([]sdcard.ImageOption{sdcard.WithBusyPolls(2)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { card.Close() })

	disk := New(card)
	require.Equal(t, ResultOK, disk.Initialize(testDrive))
	return disk, fs
}

func TestDiskOnImageCard(t *testing.T) {
	disk, fs := newImageDisk(t, 16)
	assert.Equal(t, uint32(16), disk.SectorCount())
	assert.Equal(t, uint32(sdcard.DefaultBlockSize), disk.SectorSize())

	data := make([]byte, 3*sdcard.DefaultBlockSize)
	for i := range data {
		data[i] = byte(i % 251)
	}
	require.Equal(t, ResultOK, disk.Write(testDrive, data, 4, 3))

	buf := make([]byte, len(data))
	require.Equal(t, ResultOK, disk.Read(testDrive, buf, 4, 3))
	assert.Equal(t, data, buf)

	raw, err := afero.ReadFile(fs, "/sd.img")
	require.NoError(t, err)
	assert.Equal(t, data, raw[4*sdcard.DefaultBlockSize:7*sdcard.DefaultBlockSize])

	// last block is addressable, the one after it is not
	assert.Equal(t, ResultOK, disk.Read(testDrive, buf, 15, 1))
	assert.Equal(t, ResultError, disk.Read(testDrive, buf, 15, 2))
}

func TestDiskOnEjectedCard(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, sdcard.CreateImage(fs, "/sd.img", 4))
	card, err := sdcard.OpenImage(fs, "/sd.img")
	require.NoError(t, err)
	defer card.Close()

	disk := New(card)
	require.Equal(t, ResultOK, disk.Initialize(testDrive))
	card.Eject()
	assert.Equal(t, ResultNotReady, disk.Status(testDrive))
	assert.Equal(t, ResultError, disk.Initialize(testDrive))
	assert.Equal(t, ResultError, disk.Read(testDrive, make([]byte, sdcard.DefaultBlockSize), 0, 1))
}

func TestVolumeReadWriteAt(t *testing.T) {
	disk, _ := newImageDisk(t, 8, sdcard.WithMultiBlock())
	vol, err := NewVolume(disk, testDrive)
	require.NoError(t, err)
	assert.Equal(t, int64(8*sdcard.DefaultBlockSize), vol.Size())
	assert.Equal(t, int64(sdcard.DefaultBlockSize), vol.SectorSize())

	// spans a partial sector, a whole sector and another partial sector
	payload := bytes.Repeat([]byte("sdcard!"), 200)
	n, err := vol.WriteAt(payload, 300)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	got := make([]byte, len(payload))
	n, err = vol.ReadAt(got, 300)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, got)

	head := make([]byte, 300)
	_, err = vol.ReadAt(head, 0)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 300), head)

	require.NoError(t, vol.Sync())
}

func TestVolumeBounds(t *testing.T) {
	disk, _ := newImageDisk(t, 2)
	vol, err := NewVolume(disk, testDrive)
	require.NoError(t, err)

	buf := make([]byte, 100)
	n, err := vol.ReadAt(buf, vol.Size()-40)
	assert.Equal(t, 40, n)
	assert.ErrorIs(t, err, io.EOF)

	_, err = vol.ReadAt(buf, vol.Size())
	assert.ErrorIs(t, err, io.EOF)

	_, err = vol.WriteAt(buf, vol.Size()-10)
	assert.Error(t, err)
}

func TestVolumeReadOnlyDisk(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, sdcard.CreateImage(fs, "/sd.img", 2))
	card, err := sdcard.OpenImage(fs, "/sd.img")
	require.NoError(t, err)
	defer card.Close()

	disk := New(card, WithReadOnly())
	require.Equal(t, ResultOK, disk.Initialize(testDrive))
	vol, err := NewVolume(disk, testDrive)
	require.NoError(t, err)

	_, err = vol.WriteAt(make([]byte, sdcard.DefaultBlockSize), 0)
	assert.ErrorIs(t, err, ResultWriteProtected)
}

func TestNewVolumeUninitialized(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, sdcard.CreateImage(fs, "/sd.img", 2))
	card, err := sdcard.OpenImage(fs, "/sd.img")
	require.NoError(t, err)
	defer card.Close()

	_, err = NewVolume(New(card), testDrive)
	assert.Error(t, err)
}
