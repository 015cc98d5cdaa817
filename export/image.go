// Package export converts a decoded container into a plain data model and
// writes it as JSON, CBOR or an SQLite database. The exports are meant for
// diffing two builds of the same bundle with ordinary tools.
package export

import (
	"encoding/hex"

	"github.com/deepnoodle-ai/hbc/bytecode"
	"github.com/deepnoodle-ai/hbc/dis"
	"github.com/deepnoodle-ai/hbc/op"
)

// Options controls what Build includes.
type Options struct {
	// SkipLabels leaves jump operands as raw offsets.
	SkipLabels bool

	// KeepGoing records per-string and per-function errors in String.Error
	// and Function.Error instead of failing the whole export.
	KeepGoing bool
}

// Image is the exported form of a container.
type Image struct {
	Version   uint32     `json:"version" cbor:"1,keyasint"`
	Header    Header     `json:"header" cbor:"2,keyasint"`
	Strings   []String   `json:"strings" cbor:"3,keyasint"`
	Functions []Function `json:"functions" cbor:"4,keyasint"`
}

// Header holds the file header fields worth comparing.
type Header struct {
	SourceHash      string `json:"sourceHash" cbor:"1,keyasint"`
	FileLength      uint32 `json:"fileLength" cbor:"2,keyasint"`
	GlobalCodeIndex uint32 `json:"globalCodeIndex" cbor:"3,keyasint"`
	FunctionCount   uint32 `json:"functionCount" cbor:"4,keyasint"`
	StringCount     uint32 `json:"stringCount" cbor:"5,keyasint"`
	IdentifierCount uint32 `json:"identifierCount" cbor:"6,keyasint"`
	RegExpCount     uint32 `json:"regExpCount" cbor:"7,keyasint"`
	CJSModuleCount  uint32 `json:"cjsModuleCount" cbor:"8,keyasint"`
	SegmentID       uint32 `json:"segmentId" cbor:"9,keyasint"`
	StaticBuiltins  bool   `json:"staticBuiltins" cbor:"10,keyasint"`
	HasAsync        bool   `json:"hasAsync" cbor:"11,keyasint"`
}

// String is one string table entry.
type String struct {
	ID    int    `json:"id" cbor:"1,keyasint"`
	Kind  string `json:"kind" cbor:"2,keyasint"`
	UTF16 bool   `json:"utf16,omitempty" cbor:"3,keyasint,omitempty"`
	Text  string `json:"text" cbor:"4,keyasint"`
	Error string `json:"error,omitempty" cbor:"5,keyasint,omitempty"`
}

// Function is one function with its decoded instructions.
type Function struct {
	ID              int           `json:"id" cbor:"1,keyasint"`
	Name            string        `json:"name" cbor:"2,keyasint"`
	NameID          uint32        `json:"nameId" cbor:"3,keyasint"`
	Form            string        `json:"form" cbor:"4,keyasint"`
	Offset          uint32        `json:"offset" cbor:"5,keyasint"`
	Size            uint32        `json:"size" cbor:"6,keyasint"`
	ParamCount      uint32        `json:"paramCount" cbor:"7,keyasint"`
	FrameSize       uint32        `json:"frameSize" cbor:"8,keyasint"`
	EnvironmentSize uint32        `json:"environmentSize" cbor:"9,keyasint"`
	ProhibitInvoke  string        `json:"prohibitInvoke" cbor:"10,keyasint"`
	Strict          bool          `json:"strict" cbor:"11,keyasint"`
	Instructions    []Instruction `json:"instructions,omitempty" cbor:"12,keyasint,omitempty"`
	Handlers        []Handler     `json:"handlers,omitempty" cbor:"13,keyasint,omitempty"`
	Error           string        `json:"error,omitempty" cbor:"14,keyasint,omitempty"`
}

// Instruction is one decoded instruction. Operand values are kept as text
// so that doubles such as NaN survive every encoding.
type Instruction struct {
	Offset      int       `json:"offset" cbor:"1,keyasint"`
	Opcode      string    `json:"opcode" cbor:"2,keyasint"`
	Operands    []Operand `json:"operands,omitempty" cbor:"3,keyasint,omitempty"`
	Label       int       `json:"label,omitempty" cbor:"4,keyasint,omitempty"`
	TargetLabel int       `json:"targetLabel,omitempty" cbor:"5,keyasint,omitempty"`
	Text        string    `json:"text" cbor:"6,keyasint"`
}

// Operand is one instruction operand.
type Operand struct {
	Type  string `json:"type" cbor:"1,keyasint"`
	Value string `json:"value" cbor:"2,keyasint"`
}

// Handler is one exception handler range.
type Handler struct {
	Start  uint32 `json:"start" cbor:"1,keyasint"`
	End    uint32 `json:"end" cbor:"2,keyasint"`
	Target uint32 `json:"target" cbor:"3,keyasint"`
}

// Build resolves every string and function of file into an Image.
func Build(file *bytecode.File, opts Options) (*Image, error) {
	h := file.Header()
	img := &Image{
		Version: file.Version(),
		Header: Header{
			SourceHash:      hex.EncodeToString(h.SourceHash[:]),
			FileLength:      h.FileLength,
			GlobalCodeIndex: h.GlobalCodeIndex,
			FunctionCount:   h.FunctionCount,
			StringCount:     h.StringCount,
			IdentifierCount: h.IdentifierCount,
			RegExpCount:     h.RegExpCount,
			CJSModuleCount:  h.CJSModuleCount,
			SegmentID:       h.SegmentID,
			StaticBuiltins:  h.StaticBuiltins(),
			HasAsync:        h.HasAsync(),
		},
		Functions: make([]Function, 0, file.FunctionCount()),
	}

	strs, err := buildStrings(file, opts.KeepGoing)
	if err != nil {
		return nil, err
	}
	img.Strings = strs

	for id := 0; id < file.FunctionCount(); id++ {
		fn, err := file.Function(id)
		if err != nil {
			if !opts.KeepGoing {
				return nil, err
			}
			img.Functions = append(img.Functions, Function{ID: id, Error: err.Error()})
			continue
		}
		out, err := buildFunction(file, fn, opts)
		if err != nil {
			if !opts.KeepGoing {
				return nil, err
			}
			out.Instructions, out.Handlers = nil, nil
			out.Error = err.Error()
		}
		img.Functions = append(img.Functions, out)
	}
	return img, nil
}

// Strings resolves every string of file with its kind.
func Strings(file *bytecode.File) ([]String, error) {
	return buildStrings(file, false)
}

func buildStrings(file *bytecode.File, keepGoing bool) ([]String, error) {
	out := make([]String, 0, file.StringCount())
	for id := 0; id < file.StringCount(); id++ {
		s, err := buildString(file, id)
		if err != nil {
			if !keepGoing {
				return nil, err
			}
			s = String{ID: id, Error: err.Error()}
		}
		out = append(out, s)
	}
	return out, nil
}

func buildString(file *bytecode.File, id int) (String, error) {
	data := file.Data()
	entry, err := data.StringTableEntry(id)
	if err != nil {
		return String{}, err
	}
	kind, err := data.StringKind(id)
	if err != nil {
		return String{}, err
	}
	text, err := file.String(id)
	if err != nil {
		return String{}, err
	}
	return String{ID: id, Kind: kind.String(), UTF16: entry.IsUTF16, Text: text}, nil
}

// buildFunction always returns the header fields, even when decoding the
// body fails.
func buildFunction(file *bytecode.File, fn *bytecode.Function, opts Options) (Function, error) {
	hdr := fn.Header()
	out := Function{
		ID:              fn.ID(),
		Name:            fn.Name(),
		NameID:          hdr.FunctionName,
		Form:            hdr.Form.String(),
		Offset:          hdr.Offset,
		Size:            hdr.BytecodeSizeInBytes,
		ParamCount:      hdr.ParamCount,
		FrameSize:       hdr.FrameSize,
		EnvironmentSize: hdr.EnvironmentSize,
		ProhibitInvoke:  fn.ProhibitInvoke().String(),
		Strict:          hdr.Flags.StrictMode,
	}

	instructions, err := fn.Instructions()
	if err != nil {
		return out, err
	}
	if !opts.SkipLabels {
		if err := fn.DetectLabels(); err != nil {
			return out, err
		}
	}
	disOpts := dis.Options{SkipLabels: opts.SkipLabels}
	for _, ins := range instructions {
		text, err := dis.FormatInstruction(file, ins, disOpts)
		if err != nil {
			return out, err
		}
		exported := Instruction{
			Offset: ins.Offset,
			Opcode: ins.Name(),
			Text:   text,
		}
		if !opts.SkipLabels {
			exported.Label = ins.Label
			exported.TargetLabel = ins.TargetLabel
		}
		for _, o := range ins.Operands {
			exported.Operands = append(exported.Operands, operand(o))
		}
		out.Instructions = append(out.Instructions, exported)
	}

	handlers, err := fn.ExceptionHandlers()
	if err != nil {
		return out, err
	}
	for _, h := range handlers {
		out.Handlers = append(out.Handlers, Handler{Start: h.Start, End: h.End, Target: h.Target})
	}
	return out, nil
}

func operand(o bytecode.Operand) Operand {
	v := o.String()
	if o.Type == op.Double {
		v = dis.FormatNumber(o.Double)
	}
	return Operand{Type: o.Type.String(), Value: v}
}
