package bytecode

import (
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/deepnoodle-ai/hbc/cursor"
	"github.com/deepnoodle-ai/hbc/errz"
)

// Region names used in errors and observer events.
const (
	RegionHeader              = "header"
	RegionFunctionHeaders     = "function headers"
	RegionStringKinds         = "string kinds"
	RegionIdentifierHashes    = "identifier hashes"
	RegionStringTable         = "string table"
	RegionStringTableOverflow = "string table overflow"
	RegionStringStorage       = "string storage"
	RegionArrayBuffer         = "array buffer"
	RegionObjKeyBuffer        = "object key buffer"
	RegionObjValueBuffer      = "object value buffer"
	RegionRegExpTable         = "regexp table"
	RegionRegExpStorage       = "regexp storage"
	RegionCJSModules          = "cjs module table"
	RegionFunctionSources     = "function source table"
	RegionLargeFunctionHeader = "large function header"
	RegionBytecode            = "bytecode"
	RegionExceptionHandlers   = "exception handlers"
)

// Data is low-level access to every table region of a container. The byte
// regions alias the file buffer.
type Data struct {
	file *cursor.Cursor

	Header              *FileHeader
	FunctionHeaders     []FunctionHeader
	StringKinds         []StringKindEntry
	IdentifierHashes    []uint32
	StringTable         []SmallStringTableEntry
	StringTableOverflow []OverflowStringTableEntry
	StringStorage       []byte
	ArrayBuffer         []byte
	ObjKeyBuffer        []byte
	ObjValueBuffer      []byte
	RegExpTable         []RegExpTableEntry
	RegExpStorage       []byte
	CJSModules          []ModuleEntry
	FunctionSources     []FunctionSourceEntry
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ReadData reads the header and every table region in file order. obs may
// be nil.
func ReadData(c *cursor.Cursor, obs Observer) (*Data, error) {
	if obs == nil {
		obs = NoOpObserver{}
	}
	started := time.Now()
	headerStart := c.Pos()
	h, err := ReadHeader(c)
	if err != nil {
		return nil, err
	}
	obs.OnRegion(RegionEvent{
		Name:     RegionHeader,
		Offset:   c.Base() + headerStart,
		Size:     c.Pos() - headerStart,
		Duration: time.Since(started),
	})

	d := &Data{file: c.CloneAt(0), Header: h}
	r := regionReader{c: c, obs: obs}

	d.FunctionHeaders, err = readTable(&r, RegionFunctionHeaders, h.FunctionCount, SmallFunctionHeaderSize, ReadSmallFunctionHeader)
	if err != nil {
		return nil, err
	}
	d.StringKinds, err = readTable(&r, RegionStringKinds, h.StringKindCount, 4, func(c *cursor.Cursor) (StringKindEntry, error) {
		v, err := c.U32()
		return StringKindEntry{Datum: v}, err
	})
	if err != nil {
		return nil, err
	}
	d.IdentifierHashes, err = readTable(&r, RegionIdentifierHashes, h.IdentifierCount, 4, (*cursor.Cursor).U32)
	if err != nil {
		return nil, err
	}
	d.StringTable, err = readTable(&r, RegionStringTable, h.StringCount, smallStringEntrySize, readSmallStringTableEntry)
	if err != nil {
		return nil, err
	}
	d.StringTableOverflow, err = readTable(&r, RegionStringTableOverflow, h.OverflowStringCount, 8, func(c *cursor.Cursor) (OverflowStringTableEntry, error) {
		off, n, err := readPair(c)
		return OverflowStringTableEntry{Offset: off, Length: n}, err
	})
	if err != nil {
		return nil, err
	}
	if d.StringStorage, err = r.blob(RegionStringStorage, h.StringStorageSize); err != nil {
		return nil, err
	}
	if d.ArrayBuffer, err = r.blob(RegionArrayBuffer, h.ArrayBufferSize); err != nil {
		return nil, err
	}
	if d.ObjKeyBuffer, err = r.blob(RegionObjKeyBuffer, h.ObjKeyBufferSize); err != nil {
		return nil, err
	}
	if d.ObjValueBuffer, err = r.blob(RegionObjValueBuffer, h.ObjValueBufferSize); err != nil {
		return nil, err
	}
	d.RegExpTable, err = readTable(&r, RegionRegExpTable, h.RegExpCount, 8, func(c *cursor.Cursor) (RegExpTableEntry, error) {
		off, n, err := readPair(c)
		return RegExpTableEntry{Offset: off, Length: n}, err
	})
	if err != nil {
		return nil, err
	}
	if d.RegExpStorage, err = r.blob(RegionRegExpStorage, h.RegExpStorageSize); err != nil {
		return nil, err
	}
	d.CJSModules, err = readTable(&r, RegionCJSModules, h.CJSModuleCount, 8, func(c *cursor.Cursor) (ModuleEntry, error) {
		name, fn, err := readPair(c)
		return ModuleEntry{FilenameID: name, FunctionID: fn}, err
	})
	if err != nil {
		return nil, err
	}
	d.FunctionSources, err = readTable(&r, RegionFunctionSources, h.FunctionSourceCount, 8, func(c *cursor.Cursor) (FunctionSourceEntry, error) {
		fn, str, err := readPair(c)
		return FunctionSourceEntry{FunctionID: fn, StringID: str}, err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

type regionReader struct {
	c   *cursor.Cursor
	obs Observer
}

func (r *regionReader) tooShort(name string, need int) error {
	return errz.Format(errz.ErrOutOfRange, "region needs %d bytes, %d remaining", need, r.c.Remaining()).
		WithRegion(name).WithOffset(r.c.Base() + r.c.Pos())
}

// readTable reads count fixed-size entries after aligning. The whole table
// is bounds-checked before anything is allocated.
func readTable[T any](r *regionReader, name string, count uint32, size int, read func(*cursor.Cursor) (T, error)) ([]T, error) {
	if count == 0 {
		return nil, nil
	}
	started := time.Now()
	r.c.Align(cursor.AlignDefault)
	start := r.c.Pos()
	need := int(count) * size
	if need > r.c.Remaining() {
		return nil, r.tooShort(name, need)
	}
	out := make([]T, count)
	for i := range out {
		v, err := read(r.c)
		if err != nil {
			return nil, errz.Annotate(err, name, -1)
		}
		out[i] = v
	}
	r.obs.OnRegion(RegionEvent{
		Name:     name,
		Offset:   r.c.Base() + start,
		Size:     r.c.Pos() - start,
		Count:    int(count),
		Duration: time.Since(started),
	})
	return out, nil
}

// blob returns a zero-copy view of a raw byte region after aligning.
func (r *regionReader) blob(name string, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	started := time.Now()
	r.c.Align(cursor.AlignDefault)
	start := r.c.Pos()
	b, err := r.c.Subrange(int(size))
	if err != nil {
		return nil, r.tooShort(name, int(size))
	}
	if err := r.c.Skip(int(size)); err != nil {
		return nil, errz.Annotate(err, name, -1)
	}
	r.obs.OnRegion(RegionEvent{
		Name:     name,
		Offset:   r.c.Base() + start,
		Size:     int(size),
		Duration: time.Since(started),
	})
	return b, nil
}

func outOfRange(region string, what string, id, count int) *errz.Error {
	return errz.Format(errz.ErrOutOfRange, "%s %d out of range [0, %d)", what, id, count).WithRegion(region)
}

// FunctionCount returns the number of function headers.
func (d *Data) FunctionCount() int { return len(d.FunctionHeaders) }

// StringCount returns the number of string table entries.
func (d *Data) StringCount() int { return len(d.StringTable) }

// SmallFunctionHeader returns the compact header of function id as stored
// in the table, without following overflow.
func (d *Data) SmallFunctionHeader(id int) (FunctionHeader, error) {
	if id < 0 || id >= len(d.FunctionHeaders) {
		return FunctionHeader{}, outOfRange(RegionFunctionHeaders, "function", id, len(d.FunctionHeaders))
	}
	return d.FunctionHeaders[id], nil
}

// FunctionHeader returns the full header of function id, reading the large
// form when the compact header is overflowed.
func (d *Data) FunctionHeader(id int) (FunctionHeader, error) {
	small, err := d.SmallFunctionHeader(id)
	if err != nil {
		return small, err
	}
	if !small.Flags.Overflowed {
		return small, nil
	}
	off, err := small.LargeHeaderOffset()
	if err != nil {
		return small, errz.Annotate(err, RegionLargeFunctionHeader, id)
	}
	large, err := ReadLargeFunctionHeader(d.file.CloneAt(off))
	if err != nil {
		return small, errz.Annotate(err, RegionLargeFunctionHeader, id)
	}
	return large, nil
}

// StringTableEntry returns the entry of string id with overflow resolved.
// The UTF-16 flag always comes from the small entry.
func (d *Data) StringTableEntry(id int) (StringTableEntry, error) {
	if id < 0 || id >= len(d.StringTable) {
		return StringTableEntry{}, outOfRange(RegionStringTable, "string", id, len(d.StringTable))
	}
	small := d.StringTable[id]
	if !small.IsOverflowed() {
		return StringTableEntry{IsUTF16: small.IsUTF16, Offset: small.Offset, Length: small.Length}, nil
	}
	idx := int(small.Offset)
	if idx >= len(d.StringTableOverflow) {
		return StringTableEntry{}, outOfRange(RegionStringTableOverflow, "overflow entry", idx, len(d.StringTableOverflow))
	}
	ov := d.StringTableOverflow[idx]
	return StringTableEntry{IsUTF16: small.IsUTF16, Offset: ov.Offset, Length: ov.Length}, nil
}

// DecodeString decodes the storage bytes of entry. Empty entries yield ""
// without touching storage. Ill-formed UTF-8 is replaced with U+FFFD.
func (d *Data) DecodeString(entry StringTableEntry) (string, error) {
	if entry.Length == 0 {
		return "", nil
	}
	start, n := int(entry.Offset), entry.ByteLength()
	if start+n > len(d.StringStorage) {
		return "", errz.Format(errz.ErrOutOfRange, "string bytes [%d, %d) outside storage of %d bytes", start, start+n, len(d.StringStorage)).
			WithRegion(RegionStringStorage)
	}
	b := d.StringStorage[start : start+n]
	if !entry.IsUTF16 {
		out, err := unicode.UTF8.NewDecoder().Bytes(b)
		if err != nil {
			return "", errz.Format(err, "decode utf-8 string").WithRegion(RegionStringStorage)
		}
		return string(out), nil
	}
	out, err := utf16LE.NewDecoder().Bytes(b)
	if err != nil {
		return "", errz.Format(err, "decode utf-16 string").WithRegion(RegionStringStorage)
	}
	return string(out), nil
}

// String resolves string id to its text.
func (d *Data) String(id int) (string, error) {
	entry, err := d.StringTableEntry(id)
	if err != nil {
		return "", err
	}
	s, err := d.DecodeString(entry)
	if err != nil {
		return "", errz.Annotate(err, RegionStringStorage, -1)
	}
	return s, nil
}

// StringKind returns the kind of string id by walking the run-length kind
// table.
func (d *Data) StringKind(id int) (StringKind, error) {
	if id < 0 || id >= len(d.StringTable) {
		return KindString, outOfRange(RegionStringTable, "string", id, len(d.StringTable))
	}
	base := 0
	for _, run := range d.StringKinds {
		if id < base+run.Count() {
			return run.Kind(), nil
		}
		base += run.Count()
	}
	return KindString, errz.Format(nil, "string %d not covered by %d kind entries", id, len(d.StringKinds)).
		WithRegion(RegionStringKinds)
}

// RegExp returns the compiled bytecode of regular expression i.
func (d *Data) RegExp(i int) ([]byte, error) {
	if i < 0 || i >= len(d.RegExpTable) {
		return nil, outOfRange(RegionRegExpTable, "regexp", i, len(d.RegExpTable))
	}
	e := d.RegExpTable[i]
	start, end := int(e.Offset), int(e.Offset)+int(e.Length)
	if end > len(d.RegExpStorage) {
		return nil, errz.Format(errz.ErrOutOfRange, "regexp bytes [%d, %d) outside storage of %d bytes", start, end, len(d.RegExpStorage)).
			WithRegion(RegionRegExpStorage)
	}
	return d.RegExpStorage[start:end:end], nil
}
