// Package hbctest builds small, valid bytecode containers in memory for
// tests.
package hbctest

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"golang.org/x/text/encoding/unicode"

	"github.com/deepnoodle-ai/hbc/op"
)

// Magic is the container magic.
const Magic uint64 = 0x1F1903C103BC1FC6

// DefaultVersion is the version written when Builder.Version is zero.
const DefaultVersion = 84

// String is one string table entry to emit.
type String struct {
	Text       string
	UTF16      bool
	Identifier bool

	// Overflow forces the entry through the overflow table.
	Overflow bool
}

// Handler is one exception handler entry.
type Handler struct {
	Start, End, Target uint32
}

// Function is one function to emit.
type Function struct {
	NameID uint32
	Code   []byte

	ParamCount      uint32
	FrameSize       uint32
	EnvironmentSize uint32
	ReadCache       uint8
	WriteCache      uint8
	ProhibitInvoke  uint8
	Strict          bool

	// Large emits an overflowed compact header pointing at a large one.
	Large bool

	Handlers []Handler
}

// Builder assembles a container.
type Builder struct {
	Version         uint32
	Flags           uint8
	GlobalCodeIndex uint32
	SegmentID       uint32
	SourceHash      [20]byte

	ArrayBuffer    []byte
	ObjKeyBuffer   []byte
	ObjValueBuffer []byte

	strings         []String
	functions       []Function
	regexps         [][]byte
	cjsModules      [][2]uint32
	functionSources [][2]uint32
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// AddString appends a string and returns its id.
func (b *Builder) AddString(s String) uint32 {
	b.strings = append(b.strings, s)
	return uint32(len(b.strings) - 1)
}

// AddIdentifier appends a plain identifier string and returns its id.
func (b *Builder) AddIdentifier(text string) uint32 {
	return b.AddString(String{Text: text, Identifier: true})
}

// AddFunction appends a function and returns its id.
func (b *Builder) AddFunction(fn Function) uint32 {
	b.functions = append(b.functions, fn)
	return uint32(len(b.functions) - 1)
}

// AddRegExp appends compiled regexp bytes and returns the regexp index.
func (b *Builder) AddRegExp(code []byte) uint32 {
	b.regexps = append(b.regexps, code)
	return uint32(len(b.regexps) - 1)
}

// AddCJSModule appends a CommonJS module table entry.
func (b *Builder) AddCJSModule(filenameID, functionID uint32) {
	b.cjsModules = append(b.cjsModules, [2]uint32{filenameID, functionID})
}

// AddFunctionSource appends a function source table entry.
func (b *Builder) AddFunctionSource(functionID, stringID uint32) {
	b.functionSources = append(b.functionSources, [2]uint32{functionID, stringID})
}

// Layout records where the builder placed each region.
type Layout struct {
	FunctionHeaders int
	StringTable     int
	StringStorage   int
	Bytecode        []int       // absolute offset of each function's code
	LargeHeaders    map[int]int // function id -> large header offset
	InfoSections    map[int]int // function id -> exception table offset
}

// Build returns the encoded container.
func (b *Builder) Build() []byte {
	buf, _ := b.BuildLayout()
	return buf
}

type stringEntry struct {
	utf16          bool
	offset, length uint32
	overflow       bool
}

// BuildLayout returns the encoded container and the offsets of its parts.
func (b *Builder) BuildLayout() ([]byte, Layout) {
	layout := Layout{LargeHeaders: map[int]int{}, InfoSections: map[int]int{}}

	// String storage and entries.
	var storage []byte
	var entries []stringEntry
	var overflow [][2]uint32
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	for _, s := range b.strings {
		raw := []byte(s.Text)
		length := uint32(len(raw))
		if s.UTF16 {
			var err error
			if raw, err = enc.NewEncoder().Bytes([]byte(s.Text)); err != nil {
				panic(fmt.Sprintf("hbctest: encode %q: %v", s.Text, err))
			}
			length = uint32(len(raw) / 2)
		}
		e := stringEntry{utf16: s.UTF16, offset: uint32(len(storage)), length: length}
		storage = append(storage, raw...)
		if s.Overflow || length >= 255 || e.offset >= 1<<23 {
			overflow = append(overflow, [2]uint32{e.offset, e.length})
			e = stringEntry{utf16: s.UTF16, offset: uint32(len(overflow) - 1), length: 255, overflow: true}
		}
		entries = append(entries, e)
	}

	var kinds []uint32
	var hashes []uint32
	for i, s := range b.strings {
		var bit uint32
		if s.Identifier {
			bit = 1 << 31
			h := fnv.New32a()
			h.Write([]byte(s.Text))
			hashes = append(hashes, h.Sum32())
		}
		if i > 0 && kinds[len(kinds)-1]&(1<<31) == bit {
			kinds[len(kinds)-1]++
			continue
		}
		kinds = append(kinds, bit|1)
	}

	var regexpStorage []byte
	var regexpTable [][2]uint32
	for _, re := range b.regexps {
		regexpTable = append(regexpTable, [2]uint32{uint32(len(regexpStorage)), uint32(len(re))})
		regexpStorage = append(regexpStorage, re...)
	}

	w := &writer{}
	w.pad(128) // header, written last

	w.align()
	layout.FunctionHeaders = w.len()
	headerAt := w.len()
	w.pad(16 * len(b.functions))

	w.align()
	for _, k := range kinds {
		w.u32(k)
	}
	w.align()
	for _, h := range hashes {
		w.u32(h)
	}
	w.align()
	layout.StringTable = w.len()
	for _, e := range entries {
		var word uint32
		if e.utf16 {
			word = 1
		}
		word |= (e.offset & (1<<23 - 1)) << 1
		word |= (e.length & 0xff) << 24
		w.u32(word)
	}
	w.align()
	for _, o := range overflow {
		w.u32(o[0])
		w.u32(o[1])
	}
	w.align()
	layout.StringStorage = w.len()
	w.bytes(storage)
	w.align()
	w.bytes(b.ArrayBuffer)
	w.align()
	w.bytes(b.ObjKeyBuffer)
	w.align()
	w.bytes(b.ObjValueBuffer)
	w.align()
	for _, r := range regexpTable {
		w.u32(r[0])
		w.u32(r[1])
	}
	w.align()
	w.bytes(regexpStorage)
	w.align()
	for _, m := range b.cjsModules {
		w.u32(m[0])
		w.u32(m[1])
	}
	w.align()
	for _, s := range b.functionSources {
		w.u32(s[0])
		w.u32(s[1])
	}

	// Bytecode, then info sections.
	layout.Bytecode = make([]int, len(b.functions))
	for i, fn := range b.functions {
		w.align()
		layout.Bytecode[i] = w.len()
		w.bytes(fn.Code)
	}
	infoOffsets := make([]int, len(b.functions))
	for i, fn := range b.functions {
		if !fn.Large && len(fn.Handlers) == 0 {
			continue
		}
		w.align()
		infoOffsets[i] = w.len()
		if fn.Large {
			layout.LargeHeaders[i] = w.len()
			w.largeHeader(fn, uint32(layout.Bytecode[i]), uint32(w.len()))
		}
		if len(fn.Handlers) > 0 {
			w.align()
			layout.InfoSections[i] = w.len()
			w.u32(uint32(len(fn.Handlers)))
			for _, h := range fn.Handlers {
				w.u32(h.Start)
				w.u32(h.End)
				w.u32(h.Target)
			}
		}
	}

	out := w.buf
	for i, fn := range b.functions {
		at := headerAt + 16*i
		if fn.Large {
			off := uint32(layout.LargeHeaders[i])
			putSmallHeader(out[at:], fn, off&0xffff, off>>16, true)
		} else {
			putSmallHeader(out[at:], fn, uint32(layout.Bytecode[i]), uint32(infoOffsets[i]), false)
		}
	}

	version := b.Version
	if version == 0 {
		version = DefaultVersion
	}
	h := &writer{}
	h.u64(Magic)
	h.u32(version)
	h.bytes(b.SourceHash[:])
	for _, v := range []uint32{
		uint32(len(out)),
		b.GlobalCodeIndex,
		uint32(len(b.functions)),
		uint32(len(kinds)),
		uint32(len(hashes)),
		uint32(len(entries)),
		uint32(len(overflow)),
		uint32(len(storage)),
		uint32(len(regexpTable)),
		uint32(len(regexpStorage)),
		uint32(len(b.ArrayBuffer)),
		uint32(len(b.ObjKeyBuffer)),
		uint32(len(b.ObjValueBuffer)),
		b.SegmentID,
		uint32(len(b.cjsModules)),
		uint32(len(b.functionSources)),
		0, // debug info offset
	} {
		h.u32(v)
	}
	h.u8(b.Flags)
	copy(out, h.buf)
	return out, layout
}

func flagsByte(fn Function, overflowed bool) uint8 {
	f := fn.ProhibitInvoke & 0x3
	if fn.Strict {
		f |= 1 << 2
	}
	if len(fn.Handlers) > 0 {
		f |= 1 << 3
	}
	if overflowed {
		f |= 1 << 5
	}
	return f
}

func putSmallHeader(dst []byte, fn Function, offset, infoOffset uint32, overflowed bool) {
	size := uint32(len(fn.Code))
	if !overflowed && (offset >= 1<<25 || size >= 1<<15 || fn.NameID >= 1<<17 || infoOffset >= 1<<25) {
		panic("hbctest: function does not fit a small header; set Large")
	}
	binary.LittleEndian.PutUint32(dst[0:], offset&(1<<25-1)|(fn.ParamCount&0x7f)<<25)
	binary.LittleEndian.PutUint32(dst[4:], size&(1<<15-1)|(fn.NameID&(1<<17-1))<<15)
	binary.LittleEndian.PutUint32(dst[8:], infoOffset&(1<<25-1)|(fn.FrameSize&0x7f)<<25)
	dst[12] = uint8(fn.EnvironmentSize)
	dst[13] = fn.ReadCache
	dst[14] = fn.WriteCache
	dst[15] = flagsByte(fn, overflowed)
}

type writer struct {
	buf []byte
}

func (w *writer) len() int { return len(w.buf) }

func (w *writer) align() {
	for len(w.buf)%4 != 0 {
		w.buf = append(w.buf, 0)
	}
}

func (w *writer) pad(n int)      { w.buf = append(w.buf, make([]byte, n)...) }
func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }
func (w *writer) u8(v uint8)     { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16)   { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32)   { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64)   { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *writer) largeHeader(fn Function, offset, infoOffset uint32) {
	w.u32(offset)
	w.u32(fn.ParamCount)
	w.u32(uint32(len(fn.Code)))
	w.u32(fn.NameID)
	w.u32(infoOffset)
	w.u32(fn.FrameSize)
	w.u32(fn.EnvironmentSize)
	w.u8(fn.ReadCache)
	w.u8(fn.WriteCache)
	w.u8(flagsByte(fn, false))
}

// Op encodes one instruction. Each argument is written with the width of
// the matching operand; Double operands take the bits of a float64, see
// Float.
func Op(c op.Code, args ...int64) []byte {
	info, ok := op.GetInfo(c)
	if !ok {
		panic(fmt.Sprintf("hbctest: unknown opcode %d", c))
	}
	if len(args) != len(info.Operands) {
		panic(fmt.Sprintf("hbctest: %s takes %d operands, got %d", info.Name, len(info.Operands), len(args)))
	}
	w := &writer{}
	w.u8(uint8(c))
	for i, o := range info.Operands {
		v := args[i]
		switch o.Type.Size() {
		case 1:
			w.u8(uint8(v))
		case 2:
			w.u16(uint16(v))
		case 4:
			w.u32(uint32(v))
		case 8:
			w.u64(uint64(v))
		}
	}
	return w.buf
}

// Float returns the argument Op expects for a Double operand.
func Float(v float64) int64 {
	return int64(math.Float64bits(v))
}

// Code concatenates encoded instructions.
func Code(instructions ...[]byte) []byte {
	var out []byte
	for _, ins := range instructions {
		out = append(out, ins...)
	}
	return out
}
