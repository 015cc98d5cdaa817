package cursor

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/hbc/errz"
)

func TestFixedWidthReads(t *testing.T) {
	buf := []byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06,
		0x07, 0x08, 0x09, 0x0a,
		0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12,
	}
	c := New(buf)

	u8, err := c.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), u8)

	u16, err := c.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0302), u16)

	u24, err := c.U24()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x060504), u24)

	u32, err := c.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0a090807), u32)

	u64, err := c.U64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1211100f0e0d0c0b), u64)

	assert.Equal(t, len(buf), c.Pos())
	assert.Equal(t, 0, c.Remaining())
}

func TestSignedReads(t *testing.T) {
	c := New([]byte{0xfe, 0xff, 0xff, 0xfc, 0xff, 0xff, 0xff})
	i8, err := c.I8()
	require.NoError(t, err)
	assert.Equal(t, int8(-2), i8)
	i16, err := c.I16()
	require.NoError(t, err)
	assert.Equal(t, int16(-1), i16)
	i32, err := c.I32()
	require.NoError(t, err)
	assert.Equal(t, int32(-4), i32)
}

func TestF64(t *testing.T) {
	bits := math.Float64bits(1.5)
	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = byte(bits >> (8 * i))
	}
	v, err := New(buf).F64()
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
}

func TestOutOfRange(t *testing.T) {
	c := New([]byte{1, 2, 3})
	_, err := c.U32()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrOutOfRange))
	kind, ok := errz.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errz.ErrFormat, kind)
	// a failed read does not advance
	assert.Equal(t, 0, c.Pos())
}

func TestBits(t *testing.T) {
	t.Run("u32 word", func(t *testing.T) {
		// 25 bits of 0x1234, then 7 bits of 5
		word := uint32(0x1234) | 5<<25
		c := New([]byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)})
		fields, err := c.Bits(25, 7)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0x1234, 5}, fields)
		assert.Equal(t, 4, c.Pos())
	})
	t.Run("u24 word", func(t *testing.T) {
		c := New([]byte{0x11, 0x22, 0x33})
		fields, err := c.Bits(8, 8, 8)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0x11, 0x22, 0x33}, fields)
		assert.Equal(t, 3, c.Pos())
	})
	t.Run("u8 word", func(t *testing.T) {
		c := New([]byte{0b00101110})
		fields, err := c.Bits(2, 1, 1, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, []uint32{2, 1, 1, 0, 1}, fields)
		assert.Equal(t, 1, c.Pos())
	})
	t.Run("u16 word", func(t *testing.T) {
		c := New([]byte{0xff, 0x01})
		fields, err := c.Bits(4, 8)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0xf, 0x1f}, fields)
		assert.Equal(t, 2, c.Pos())
	})
	t.Run("too wide", func(t *testing.T) {
		c := New(make([]byte, 8))
		_, err := c.Bits(16, 17)
		assert.True(t, errors.Is(err, errz.ErrWordTooLarge))
	})
}

func TestAlign(t *testing.T) {
	tests := []struct{ pos, n, want int }{
		{0, 4, 0}, {1, 4, 4}, {4, 4, 4}, {5, 4, 8}, {7, 8, 8}, {3, 1, 3},
	}
	for _, tt := range tests {
		c := New(make([]byte, 16))
		_, err := c.Seek(int64(tt.pos), io.SeekStart)
		require.NoError(t, err)
		c.Align(tt.n)
		assert.Equal(t, tt.want, c.Pos())
	}
}

func TestSeek(t *testing.T) {
	c := New(make([]byte, 10))
	pos, err := c.Seek(4, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)
	pos, err = c.Seek(2, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)
	pos, err = c.Seek(-1, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(9), pos)
	_, err = c.Seek(-20, io.SeekCurrent)
	assert.Error(t, err)
	assert.Equal(t, 9, c.Pos())
}

func TestCloneSubrangeWindow(t *testing.T) {
	buf := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	c := New(buf)
	require.NoError(t, c.Skip(2))

	clone := c.CloneAt(5)
	v, err := clone.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(5), v)
	assert.Equal(t, 2, c.Pos())

	sub, err := c.Subrange(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4}, sub)
	assert.Equal(t, 2, c.Pos())
	_, err = c.Subrange(7)
	assert.Error(t, err)

	w, err := c.Window(4, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, w.Base())
	assert.Equal(t, 2, w.Len())
	_, err = w.U16()
	require.NoError(t, err)
	_, err = w.U8()
	require.Error(t, err)
	var e *errz.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 6, e.Offset)

	_, err = c.Window(6, 4)
	assert.Error(t, err)
}
