// Package cursor provides a positioned little-endian reader over an
// in-memory byte buffer.
//
// A Cursor never copies: clones, windows and subranges all share the buffer
// they were created from. Every read is bounds-checked and fails with an
// errz format error wrapping errz.ErrOutOfRange rather than clamping.
package cursor

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/deepnoodle-ai/hbc/errz"
)

// AlignDefault is the alignment used between container regions.
const AlignDefault = 4

// Cursor reads fixed-width values from a byte buffer, advancing its
// position by the width of each value.
type Cursor struct {
	buf  []byte
	base int // absolute offset of buf[0], used in error reports
	pos  int
}

// New returns a cursor positioned at the start of buf.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current position relative to the start of the cursor.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the length of the underlying window.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of bytes between the position and the end.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.buf) {
		return 0
	}
	return len(c.buf) - c.pos
}

// Bytes returns the whole underlying window.
func (c *Cursor) Bytes() []byte { return c.buf }

// Base returns the absolute offset of the window within the original buffer.
func (c *Cursor) Base() int { return c.base }

func (c *Cursor) take(n int, what string) ([]byte, error) {
	if n < 0 || c.pos < 0 || c.pos+n > len(c.buf) {
		return nil, errz.Format(errz.ErrOutOfRange, "read %s of %d bytes with %d remaining", what, n, c.Remaining()).
			WithOffset(c.base + c.pos)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// U8 reads one unsigned byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.take(1, "u8")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a 16-bit little-endian unsigned integer.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.take(2, "u16")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U24 reads a 24-bit little-endian unsigned integer.
func (c *Cursor) U24() (uint32, error) {
	b, err := c.take(3, "u24")
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// U32 reads a 32-bit little-endian unsigned integer.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.take(4, "u32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a 64-bit little-endian unsigned integer.
func (c *Cursor) U64() (uint64, error) {
	b, err := c.take(8, "u64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// I8 reads one signed byte.
func (c *Cursor) I8() (int8, error) {
	v, err := c.U8()
	return int8(v), err
}

// I16 reads a 16-bit little-endian signed integer.
func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

// I32 reads a 32-bit little-endian signed integer.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// I64 reads a 64-bit little-endian signed integer.
func (c *Cursor) I64() (int64, error) {
	v, err := c.U64()
	return int64(v), err
}

// F64 reads an IEEE-754 little-endian double.
func (c *Cursor) F64() (float64, error) {
	v, err := c.U64()
	return math.Float64frombits(v), err
}

// Bits reads the smallest word of 8, 16, 24 or 32 bits that holds the sum
// of widths and splits it into fields, least significant bits first.
func (c *Cursor) Bits(widths ...int) ([]uint32, error) {
	sum := 0
	for _, w := range widths {
		sum += w
	}
	var word uint32
	var err error
	switch {
	case sum <= 8:
		var v uint8
		v, err = c.U8()
		word = uint32(v)
	case sum <= 16:
		var v uint16
		v, err = c.U16()
		word = uint32(v)
	case sum <= 24:
		word, err = c.U24()
	case sum <= 32:
		word, err = c.U32()
	default:
		return nil, errz.Format(errz.ErrWordTooLarge, "bit fields sum to %d", sum).WithOffset(c.base + c.pos)
	}
	if err != nil {
		return nil, err
	}
	fields := make([]uint32, len(widths))
	shift := 0
	for i, w := range widths {
		mask := uint32(1)<<uint(w) - 1
		fields[i] = (word >> uint(shift)) & mask
		shift += w
	}
	return fields, nil
}

// Align rounds the position up to the next multiple of n, which must be a
// power of two.
func (c *Cursor) Align(n int) {
	if n <= 1 {
		return
	}
	c.pos = (c.pos + n - 1) &^ (n - 1)
}

// Seek moves the position. whence is one of io.SeekStart, io.SeekCurrent
// or io.SeekEnd. Seeking past the end is allowed; the next read fails.
func (c *Cursor) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(c.pos) + offset
	case io.SeekEnd:
		next = int64(len(c.buf)) + offset
	default:
		return int64(c.pos), errz.Format(nil, "invalid whence %d", whence)
	}
	if next < 0 {
		return int64(c.pos), errz.Format(errz.ErrOutOfRange, "seek to negative position %d", next).WithOffset(c.base + c.pos)
	}
	c.pos = int(next)
	return next, nil
}

// Skip advances the position by n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.take(n, "skip")
	return err
}

// CloneAt returns a new cursor over the same buffer positioned at off.
func (c *Cursor) CloneAt(off int) *Cursor {
	return &Cursor{buf: c.buf, base: c.base, pos: off}
}

// Subrange returns the n bytes at the position without advancing.
func (c *Cursor) Subrange(n int) ([]byte, error) {
	if n < 0 || c.pos < 0 || c.pos+n > len(c.buf) {
		return nil, errz.Format(errz.ErrOutOfRange, "subrange of %d bytes with %d remaining", n, c.Remaining()).
			WithOffset(c.base + c.pos)
	}
	return c.buf[c.pos : c.pos+n : c.pos+n], nil
}

// Window returns a cursor restricted to buf[off:off+n], positioned at its
// start. Reads through the window cannot reach bytes outside it.
func (c *Cursor) Window(off, n int) (*Cursor, error) {
	if off < 0 || n < 0 || off+n > len(c.buf) {
		return nil, errz.Format(errz.ErrOutOfRange, "window [%d, %d) outside buffer of %d bytes", off, off+n, len(c.buf)).
			WithOffset(c.base + off)
	}
	return &Cursor{buf: c.buf[off : off+n : off+n], base: c.base + off}, nil
}
