package bytecode

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/deepnoodle-ai/hbc/cursor"
	"github.com/deepnoodle-ai/hbc/errz"
	"github.com/deepnoodle-ai/hbc/op"
)

// Function is one function of a container. Its header and name are
// resolved when the Function is constructed; its instructions are decoded
// on the first call to Instructions and cached.
type Function struct {
	id     int
	header FunctionHeader
	name   string
	file   *cursor.Cursor
	obs    Observer

	once         sync.Once
	instructions []*Instruction
	byOffset     map[int]*Instruction
	decodeErr    error

	labelOnce  sync.Once
	labelErr   error
	labelCount int
	labeled    atomic.Bool
}

func newFunction(id int, header FunctionHeader, name string, file *cursor.Cursor, obs Observer) *Function {
	return &Function{
		id:     id,
		header: header,
		name:   name,
		file:   file,
		obs:    obs,
	}
}

// ID returns the function's index in the function table.
func (f *Function) ID() int {
	return f.id
}

// Name returns the function name, or an empty string for anonymous
// functions.
func (f *Function) Name() string {
	return f.name
}

// Header returns the resolved function header.
func (f *Function) Header() FunctionHeader {
	return f.header
}

// ProhibitInvoke returns the invocation restriction of the function.
func (f *Function) ProhibitInvoke() ProhibitInvoke {
	return f.header.Flags.ProhibitInvoke
}

// Bytecode returns the function's raw instruction bytes. The slice aliases
// the file buffer.
func (f *Function) Bytecode() ([]byte, error) {
	w, err := f.window()
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (f *Function) window() (*cursor.Cursor, error) {
	w, err := f.file.Window(int(f.header.Offset), int(f.header.BytecodeSizeInBytes))
	if err != nil {
		return nil, errz.Annotate(err, RegionBytecode, f.id)
	}
	return w, nil
}

// Instructions returns the decoded instruction stream. Decoding happens
// once; later calls return the same slice, or the same error.
func (f *Function) Instructions() ([]*Instruction, error) {
	f.once.Do(func() {
		started := time.Now()
		f.instructions, f.byOffset, f.decodeErr = f.decode()
		f.obs.OnDecode(DecodeEvent{
			Function:     f.id,
			Instructions: len(f.instructions),
			Bytes:        int(f.header.BytecodeSizeInBytes),
			Err:          f.decodeErr,
			Duration:     time.Since(started),
		})
	})
	return f.instructions, f.decodeErr
}

// InstructionAt returns the instruction that starts at byte offset off.
func (f *Function) InstructionAt(off int) (*Instruction, bool) {
	if _, err := f.Instructions(); err != nil {
		return nil, false
	}
	ins, ok := f.byOffset[off]
	return ins, ok
}

func (f *Function) decode() ([]*Instruction, map[int]*Instruction, error) {
	c, err := f.window()
	if err != nil {
		return nil, nil, err
	}
	var out []*Instruction
	byOffset := map[int]*Instruction{}
	for c.Pos() < c.Len() {
		off := c.Pos()
		b, err := c.U8()
		if err != nil {
			return nil, nil, errz.Annotate(err, RegionBytecode, f.id)
		}
		info, ok := op.GetInfo(op.Code(b))
		if !ok {
			return nil, nil, errz.Format(errz.ErrUnknownOpcode, "opcode 0x%02x at %d", b, off).
				WithRegion(RegionBytecode).WithFunction(f.id).WithOffset(c.Base() + off)
		}
		ins := &Instruction{
			Opcode:   info.Code,
			Offset:   off,
			Operands: make([]Operand, len(info.Operands)),
		}
		for i, oi := range info.Operands {
			operand, err := ReadOperand(c, oi.Type)
			if err != nil {
				return nil, nil, errz.Annotate(err, RegionBytecode, f.id)
			}
			operand.StringID = oi.StringID
			operand.FunctionID = oi.FunctionID
			ins.Operands[i] = operand
		}
		out = append(out, ins)
		byOffset[off] = ins
	}
	return out, byOffset, nil
}

// ExceptionHandlers reads the function's exception handler table. It
// returns nil when the header has no exception handler flag.
func (f *Function) ExceptionHandlers() ([]ExceptionHandler, error) {
	if !f.header.Flags.HasExceptionHandler {
		return nil, nil
	}
	off := int(f.header.InfoOffset)
	if f.header.Form == FormLarge {
		// The info section of a large function starts with its header.
		off += LargeFunctionHeaderSize
	}
	c := f.file.CloneAt(off)
	c.Align(cursor.AlignDefault)
	count, err := c.U32()
	if err != nil {
		return nil, errz.Annotate(err, RegionExceptionHandlers, f.id)
	}
	if int(count)*12 > c.Remaining() {
		return nil, errz.Format(errz.ErrOutOfRange, "%d handlers with %d bytes remaining", count, c.Remaining()).
			WithRegion(RegionExceptionHandlers).WithFunction(f.id).WithOffset(c.Base() + c.Pos())
	}
	handlers := make([]ExceptionHandler, count)
	for i := range handlers {
		h, err := readExceptionHandler(c)
		if err != nil {
			return nil, errz.Annotate(err, RegionExceptionHandlers, f.id)
		}
		handlers[i] = h
	}
	return handlers, nil
}

// Stats summarizes the decoded instruction stream.
func (f *Function) Stats() (Stats, error) {
	instructions, err := f.Instructions()
	if err != nil {
		return Stats{}, err
	}
	s := Stats{InstructionCount: len(instructions), ByteCount: int(f.header.BytecodeSizeInBytes)}
	if f.Labeled() {
		s.LabelCount = f.labelCount
	}
	for _, ins := range instructions {
		info := ins.Info()
		if info.IsJump {
			s.JumpCount++
		}
		if info.IsCallType {
			s.CallCount++
		}
		for _, o := range ins.Operands {
			if o.StringID {
				s.StringRefs++
			}
			if o.FunctionID {
				s.FunctionRefs++
			}
		}
	}
	return s, nil
}

// String returns a one-line summary of the function.
func (f *Function) String() string {
	name := f.name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("function %d %s (params=%d, frame=%d, bytes=%d)",
		f.id, name, f.header.ParamCount, f.header.FrameSize, f.header.BytecodeSizeInBytes)
}
