package bytecode

import (
	"strings"

	"github.com/deepnoodle-ai/hbc/op"
)

// Instruction is one decoded instruction of a function.
type Instruction struct {
	Opcode op.Code

	// Offset is the byte offset of the opcode within the function's
	// bytecode.
	Offset int

	Operands []Operand

	// Label is the label id of this instruction when some jump targets
	// it, or 0.
	Label int

	// TargetLabel is the label id of the jump destination when this is a
	// jump and labels have been detected, or 0.
	TargetLabel int
}

// Info returns the opcode metadata of the instruction.
func (i *Instruction) Info() op.Info {
	info, _ := op.GetInfo(i.Opcode)
	return info
}

// Name returns the opcode name.
func (i *Instruction) Name() string {
	return i.Opcode.String()
}

// IsJump reports whether the instruction is a relative jump.
func (i *Instruction) IsJump() bool {
	return i.Info().IsJump
}

// Size returns the encoded size of the instruction in bytes.
func (i *Instruction) Size() int {
	size := 1
	for _, o := range i.Operands {
		size += o.Type.Size()
	}
	return size
}

// JumpTarget returns the offset the instruction jumps to. The boolean is
// false when the instruction is not a jump.
func (i *Instruction) JumpTarget() (int, bool) {
	if !i.IsJump() || len(i.Operands) == 0 {
		return 0, false
	}
	return i.Offset + int(i.Operands[0].Value), true
}

// String returns the opcode name followed by its raw operands.
func (i *Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.Name())
	for n, o := range i.Operands {
		if n == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		b.WriteString(o.String())
	}
	return b.String()
}
