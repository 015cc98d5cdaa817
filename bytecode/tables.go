package bytecode

import "github.com/deepnoodle-ai/hbc/cursor"

// StringKind classifies a run of string table entries.
type StringKind uint32

const (
	KindString     StringKind = 0
	KindIdentifier StringKind = 1 << 31
)

func (k StringKind) String() string {
	if k == KindIdentifier {
		return "identifier"
	}
	return "string"
}

const stringKindCountMask = 1<<31 - 1

// StringKindEntry is a run-length entry: Count consecutive strings of the
// same Kind.
type StringKindEntry struct {
	Datum uint32
}

func (e StringKindEntry) Kind() StringKind {
	return StringKind(e.Datum &^ stringKindCountMask)
}

func (e StringKindEntry) Count() int {
	return int(e.Datum & stringKindCountMask)
}

const (
	// overflowLength marks a small string entry whose offset indexes the
	// overflow table.
	overflowLength       = 1<<8 - 1
	smallStringEntrySize = 4
)

// SmallStringTableEntry is the packed form of a string table entry.
type SmallStringTableEntry struct {
	IsUTF16 bool
	Offset  uint32 // 23 bits
	Length  uint32 // 8 bits
}

// IsOverflowed reports whether Offset is an index into the overflow table.
func (e SmallStringTableEntry) IsOverflowed() bool {
	return e.Length == overflowLength
}

func readSmallStringTableEntry(c *cursor.Cursor) (SmallStringTableEntry, error) {
	f, err := c.Bits(1, 23, 8)
	if err != nil {
		return SmallStringTableEntry{}, err
	}
	return SmallStringTableEntry{IsUTF16: f[0] == 1, Offset: f[1], Length: f[2]}, nil
}

// OverflowStringTableEntry holds the full-width offset and length of a
// string that did not fit a small entry.
type OverflowStringTableEntry struct {
	Offset uint32
	Length uint32
}

// StringTableEntry is a string table entry with overflow resolved.
// Length counts characters, so UTF-16 strings span twice as many bytes.
type StringTableEntry struct {
	IsUTF16 bool
	Offset  uint32
	Length  uint32
}

// ByteLength returns the number of storage bytes the string occupies.
func (e StringTableEntry) ByteLength() int {
	if e.IsUTF16 {
		return int(e.Length) * 2
	}
	return int(e.Length)
}

// RegExpTableEntry locates one compiled regular expression in the regexp
// storage region.
type RegExpTableEntry struct {
	Offset uint32
	Length uint32
}

// ModuleEntry maps a CommonJS module filename (a string id) to the
// function that implements it.
type ModuleEntry struct {
	FilenameID uint32
	FunctionID uint32
}

// FunctionSourceEntry maps a function id to a string id holding its source.
type FunctionSourceEntry struct {
	FunctionID uint32
	StringID   uint32
}

func readPair(c *cursor.Cursor) (uint32, uint32, error) {
	a, err := c.U32()
	if err != nil {
		return 0, 0, err
	}
	b, err := c.U32()
	return a, b, err
}
