package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/hbc/cursor"
	"github.com/deepnoodle-ai/hbc/errz"
)

const (
	// SmallFunctionHeaderSize is the encoded size of a compact header.
	SmallFunctionHeaderSize = 16

	// LargeFunctionHeaderSize is the encoded size of a large header.
	LargeFunctionHeaderSize = 31
)

// ProhibitInvoke restricts how a function may be invoked.
type ProhibitInvoke uint8

const (
	ProhibitCall ProhibitInvoke = iota
	ProhibitConstruct
	ProhibitNone
)

func (p ProhibitInvoke) String() string {
	switch p {
	case ProhibitCall:
		return "ProhibitCall"
	case ProhibitConstruct:
		return "ProhibitConstruct"
	case ProhibitNone:
		return "ProhibitNone"
	default:
		return fmt.Sprintf("ProhibitInvoke(%d)", uint8(p))
	}
}

// FunctionHeaderFlags is the flag byte shared by both header forms.
type FunctionHeaderFlags struct {
	ProhibitInvoke      ProhibitInvoke
	StrictMode          bool
	HasExceptionHandler bool
	HasDebugInfo        bool
	Overflowed          bool
}

func readFunctionHeaderFlags(c *cursor.Cursor) (FunctionHeaderFlags, error) {
	f, err := c.Bits(2, 1, 1, 1, 1)
	if err != nil {
		return FunctionHeaderFlags{}, err
	}
	return FunctionHeaderFlags{
		ProhibitInvoke:      ProhibitInvoke(f[0]),
		StrictMode:          f[1] == 1,
		HasExceptionHandler: f[2] == 1,
		HasDebugInfo:        f[3] == 1,
		Overflowed:          f[4] == 1,
	}, nil
}

// HeaderForm tells which encoding a FunctionHeader was decoded from.
type HeaderForm uint8

const (
	FormSmall HeaderForm = iota
	FormLarge
)

func (f HeaderForm) String() string {
	if f == FormLarge {
		return "large"
	}
	return "small"
}

// FunctionHeader describes one function: where its bytecode lives and the
// frame it needs.
type FunctionHeader struct {
	Form HeaderForm

	Offset              uint32
	ParamCount          uint32
	BytecodeSizeInBytes uint32
	FunctionName        uint32
	InfoOffset          uint32
	FrameSize           uint32
	EnvironmentSize     uint32

	HighestReadCacheIndex  uint8
	HighestWriteCacheIndex uint8

	Flags FunctionHeaderFlags
}

// LargeHeaderOffset returns the absolute offset of the large header that
// replaces an overflowed compact header. The compact InfoOffset and Offset
// fields hold the high and low halves of the pointer.
func (h FunctionHeader) LargeHeaderOffset() (int, error) {
	if !h.Flags.Overflowed {
		return 0, errz.Indirection(errz.ErrNotOverflowed, "large header offset requested")
	}
	return int(h.InfoOffset<<16 | h.Offset), nil
}

// ReadSmallFunctionHeader reads a compact, bit-packed function header.
func ReadSmallFunctionHeader(c *cursor.Cursor) (FunctionHeader, error) {
	h := FunctionHeader{Form: FormSmall}
	w, err := c.Bits(25, 7)
	if err != nil {
		return h, err
	}
	h.Offset, h.ParamCount = w[0], w[1]

	if w, err = c.Bits(15, 17); err != nil {
		return h, err
	}
	h.BytecodeSizeInBytes, h.FunctionName = w[0], w[1]

	if w, err = c.Bits(25, 7); err != nil {
		return h, err
	}
	h.InfoOffset, h.FrameSize = w[0], w[1]

	if w, err = c.Bits(8, 8, 8); err != nil {
		return h, err
	}
	h.EnvironmentSize = w[0]
	h.HighestReadCacheIndex = uint8(w[1])
	h.HighestWriteCacheIndex = uint8(w[2])

	h.Flags, err = readFunctionHeaderFlags(c)
	return h, err
}

// ReadLargeFunctionHeader reads a full-width function header.
func ReadLargeFunctionHeader(c *cursor.Cursor) (FunctionHeader, error) {
	h := FunctionHeader{Form: FormLarge}
	fields := []*uint32{
		&h.Offset,
		&h.ParamCount,
		&h.BytecodeSizeInBytes,
		&h.FunctionName,
		&h.InfoOffset,
		&h.FrameSize,
		&h.EnvironmentSize,
	}
	var err error
	for _, f := range fields {
		if *f, err = c.U32(); err != nil {
			return h, err
		}
	}
	if h.HighestReadCacheIndex, err = c.U8(); err != nil {
		return h, err
	}
	if h.HighestWriteCacheIndex, err = c.U8(); err != nil {
		return h, err
	}
	h.Flags, err = readFunctionHeaderFlags(c)
	return h, err
}
