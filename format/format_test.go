package format_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dcbgo/format"
	"github.com/hupe1980/dcbgo/testutil"
)

func TestDecodeHeader(t *testing.T) {
	t.Run("valid image", func(t *testing.T) {
		b := testutil.NewBuilder()
		b.AddStruct("Thing", format.NoneID, 0)
		img := b.Build()

		h, err := format.DecodeHeader(img, int64(len(img)))
		require.NoError(t, err)
		require.Equal(t, uint32(1), h.Version)
		require.Equal(t, uint32(1), h.StructCount)
		require.Equal(t, uint32(0), h.RecordCount)
	})

	t.Run("invalid magic", func(t *testing.T) {
		b := testutil.NewBuilder()
		b.AddStruct("Thing", format.NoneID, 0)
		img := b.Build()
		binary.LittleEndian.PutUint32(img[0:4], 0xDEADBEEF)

		_, err := format.DecodeHeader(img, int64(len(img)))
		require.ErrorIs(t, err, format.ErrInvalidMagic)
	})

	t.Run("unsupported version", func(t *testing.T) {
		b := testutil.NewBuilder()
		b.AddStruct("Thing", format.NoneID, 0)
		img := b.Build()
		binary.LittleEndian.PutUint32(img[4:8], 99)

		_, err := format.DecodeHeader(img, int64(len(img)))
		require.ErrorIs(t, err, format.ErrInvalidVersion)
	})

	t.Run("truncated header", func(t *testing.T) {
		_, err := format.DecodeHeader(make([]byte, format.HeaderSize-1), format.HeaderSize-1)
		require.ErrorIs(t, err, format.ErrTruncated)
	})

	t.Run("section offset outside blob", func(t *testing.T) {
		b := testutil.NewBuilder()
		b.AddStruct("Thing", format.NoneID, 0)
		img := b.Build()
		binary.LittleEndian.PutUint32(img[24:28], uint32(len(img)+100)) // struct section

		_, err := format.DecodeHeader(img, int64(len(img)))
		require.Error(t, err)
	})

	t.Run("section exceeds blob", func(t *testing.T) {
		b := testutil.NewBuilder()
		b.AddStruct("Thing", format.NoneID, 0)
		img := b.Build()
		binary.LittleEndian.PutUint32(img[8:12], 1000) // struct count

		_, err := format.DecodeHeader(img, int64(len(img)))
		require.ErrorIs(t, err, format.ErrTruncated)
	})
}
