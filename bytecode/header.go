package bytecode

import (
	"github.com/deepnoodle-ai/hbc/cursor"
	"github.com/deepnoodle-ai/hbc/errz"
)

const (
	// Magic is the constant that opens every container.
	Magic uint64 = 0x1F1903C103BC1FC6

	// SourceHashSize is the length of the SHA-1 source hash in the header.
	SourceHashSize = 20

	// HeaderSize is the encoded size of FileHeader including padding.
	HeaderSize = 128

	headerPadding = 27
)

// Header option flags.
const (
	FlagStaticBuiltins               uint8 = 1 << 0
	FlagCJSModulesStaticallyResolved uint8 = 1 << 1
	FlagHasAsync                     uint8 = 1 << 2
)

// FileHeader is the fixed-size global header of a container.
type FileHeader struct {
	Magic           uint64
	Version         uint32
	SourceHash      [SourceHashSize]byte
	FileLength      uint32
	GlobalCodeIndex uint32
	FunctionCount   uint32
	StringKindCount uint32
	IdentifierCount uint32
	StringCount     uint32

	OverflowStringCount uint32
	StringStorageSize   uint32
	RegExpCount         uint32
	RegExpStorageSize   uint32
	ArrayBufferSize     uint32
	ObjKeyBufferSize    uint32
	ObjValueBufferSize  uint32
	SegmentID           uint32
	CJSModuleCount      uint32
	FunctionSourceCount uint32
	DebugInfoOffset     uint32
	Flags               uint8
}

// StaticBuiltins reports whether builtins were resolved at compile time.
func (h *FileHeader) StaticBuiltins() bool {
	return h.Flags&FlagStaticBuiltins != 0
}

// CJSModulesStaticallyResolved reports whether CommonJS module ids were
// resolved at compile time.
func (h *FileHeader) CJSModulesStaticallyResolved() bool {
	return h.Flags&FlagCJSModulesStaticallyResolved != 0
}

// HasAsync reports whether the image contains async functions.
func (h *FileHeader) HasAsync() bool {
	return h.Flags&FlagHasAsync != 0
}

// ReadHeader reads the file header at the cursor position, leaving the
// cursor aligned just past the padding. The magic is checked before any
// other field is read.
func ReadHeader(c *cursor.Cursor) (*FileHeader, error) {
	start := c.Pos()
	magic, err := c.U64()
	if err != nil {
		return nil, errz.Annotate(err, "header", -1)
	}
	if magic != Magic {
		return nil, errz.Format(errz.ErrInvalidMagic, "found 0x%016X, want 0x%016X", magic, Magic).
			WithRegion("header").WithOffset(c.Base() + start)
	}
	h := &FileHeader{Magic: magic}
	if h.Version, err = c.U32(); err != nil {
		return nil, errz.Annotate(err, "header", -1)
	}
	hash, err := c.Subrange(SourceHashSize)
	if err != nil {
		return nil, errz.Annotate(err, "header", -1)
	}
	copy(h.SourceHash[:], hash)
	if err := c.Skip(SourceHashSize); err != nil {
		return nil, errz.Annotate(err, "header", -1)
	}

	fields := []*uint32{
		&h.FileLength,
		&h.GlobalCodeIndex,
		&h.FunctionCount,
		&h.StringKindCount,
		&h.IdentifierCount,
		&h.StringCount,
		&h.OverflowStringCount,
		&h.StringStorageSize,
		&h.RegExpCount,
		&h.RegExpStorageSize,
		&h.ArrayBufferSize,
		&h.ObjKeyBufferSize,
		&h.ObjValueBufferSize,
		&h.SegmentID,
		&h.CJSModuleCount,
		&h.FunctionSourceCount,
		&h.DebugInfoOffset,
	}
	for _, f := range fields {
		if *f, err = c.U32(); err != nil {
			return nil, errz.Annotate(err, "header", -1)
		}
	}
	if h.Flags, err = c.U8(); err != nil {
		return nil, errz.Annotate(err, "header", -1)
	}
	if err := c.Skip(headerPadding); err != nil {
		return nil, errz.Annotate(err, "header", -1)
	}
	c.Align(cursor.AlignDefault)
	return h, nil
}
