package sdcard

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCard(t *testing.T, blocks uint32, opts ...ImageOption) (*ImageCard, afero.Fs) {
	fs := afero.NewMemMapFs()
	require.NoError(t, CreateImage(fs, "/card.img", blocks))
	card, err := OpenImage(fs, "/card.img", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { card.Close() })
	return card, fs
}

func TestImageCardInfo(t *testing.T) {
	card, _ := newTestCard(t, 64)

	info, st := card.CardInfo()
	require.Equal(t, StatusOK, st)
	assert.Equal(t, uint32(64), info.LogBlockNbr)
	assert.Equal(t, uint32(DefaultBlockSize), info.LogBlockSize)
	assert.Equal(t, CardSDSC, info.CardType)
	assert.Equal(t, uint64(64*DefaultBlockSize), info.Capacity())
}

func TestImageCardReadWrite(t *testing.T) {
	card, fs := newTestCard(t, 8)

	data := bytes.Repeat([]byte{0xa5}, DefaultBlockSize)
	require.Equal(t, StatusOK, card.WriteBlocks(data, 3, 1, 0))
	assert.Equal(t, StateTransfer, card.CardState())

	buf := make([]byte, DefaultBlockSize)
	require.Equal(t, StatusOK, card.ReadBlocks(buf, 3, 1, 0))
	assert.Equal(t, data, buf)

	raw, err := afero.ReadFile(fs, "/card.img")
	require.NoError(t, err)
	assert.Equal(t, data, raw[3*DefaultBlockSize:4*DefaultBlockSize])
}

func TestImageCardBusyPolls(t *testing.T) {
	card, _ := newTestCard(t, 8, WithBusyPolls(2))

	buf := make([]byte, DefaultBlockSize)
	require.Equal(t, StatusOK, card.WriteBlocks(buf, 0, 1, 0))
	assert.Equal(t, StatusBusy, card.WriteBlocks(buf, 1, 1, 0))
	assert.Equal(t, StateProgramming, card.CardState())
	assert.Equal(t, StateProgramming, card.CardState())
	assert.Equal(t, StateTransfer, card.CardState())

	require.Equal(t, StatusOK, card.ReadBlocks(buf, 0, 1, 0))
	assert.Equal(t, StateSending, card.CardState())
}

func TestImageCardRejectsBadTransfers(t *testing.T) {
	card, _ := newTestCard(t, 4)
	buf := make([]byte, 2*DefaultBlockSize)

	assert.Equal(t, StatusError, card.ReadBlocks(buf, 4, 1, 0), "past the end")
	assert.Equal(t, StatusError, card.ReadBlocks(buf, 0, 0, 0), "zero blocks")
	assert.Equal(t, StatusError, card.ReadBlocks(buf, 0, 2, 0), "multi-block disabled")
	assert.Equal(t, StatusError, card.ReadBlocks(buf[:10], 0, 1, 0), "short buffer")
}

func TestImageCardMultiBlock(t *testing.T) {
	card, _ := newTestCard(t, 4, WithMultiBlock())
	assert.True(t, card.MultiBlock())

	data := make([]byte, 3*DefaultBlockSize)
	for i := range data {
		data[i] = byte(i)
	}
	require.Equal(t, StatusOK, card.WriteBlocks(data, 1, 3, 0))
	buf := make([]byte, len(data))
	require.Equal(t, StatusOK, card.ReadBlocks(buf, 1, 3, 0))
	assert.Equal(t, data, buf)
}

func TestImageCardWriteProtect(t *testing.T) {
	card, _ := newTestCard(t, 4, WithWriteProtect())
	buf := make([]byte, DefaultBlockSize)
	assert.Equal(t, StatusError, card.WriteBlocks(buf, 0, 1, 0))
	assert.Equal(t, StatusOK, card.ReadBlocks(buf, 0, 1, 0))
}

func TestImageCardEject(t *testing.T) {
	card, _ := newTestCard(t, 4)
	buf := make([]byte, DefaultBlockSize)

	card.Eject()
	assert.False(t, card.CardDetected())
	assert.Equal(t, StateDisconnected, card.CardState())
	assert.Equal(t, StatusError, card.ReadBlocks(buf, 0, 1, 0))
	_, st := card.CardInfo()
	assert.Equal(t, StatusError, st)

	card.Insert()
	assert.True(t, card.CardDetected())
	assert.Equal(t, StatusOK, card.ReadBlocks(buf, 0, 1, 0))
}

func TestStatusErr(t *testing.T) {
	assert.NoError(t, StatusOK.Err())
	assert.EqualError(t, StatusTimeout.Err(), "sdcard: timeout")
	assert.Equal(t, "programming", StateProgramming.String())
}
