package bytecode

import (
	"fmt"
	"strconv"

	"github.com/deepnoodle-ai/hbc/cursor"
	"github.com/deepnoodle-ai/hbc/errz"
	"github.com/deepnoodle-ai/hbc/op"
)

// Operand is one decoded instruction operand.
type Operand struct {
	Type op.OperandType

	// Value holds the operand for every type except op.Double. Address
	// and Imm32 operands are sign-extended.
	Value int64

	// Double holds the operand when Type is op.Double.
	Double float64

	// StringID is set when Value is a string table id.
	StringID bool

	// FunctionID is set when Value is a function id.
	FunctionID bool
}

// IsRegister reports whether the operand names a register.
func (o Operand) IsRegister() bool {
	return o.Type.IsRegister()
}

// String formats the operand without any table lookups: registers as
// "r<n>", doubles in their shortest form and integers in decimal.
func (o Operand) String() string {
	switch {
	case o.Type.IsRegister():
		return fmt.Sprintf("r%d", o.Value)
	case o.Type == op.Double:
		return strconv.FormatFloat(o.Double, 'g', -1, 64)
	default:
		return strconv.FormatInt(o.Value, 10)
	}
}

// ReadOperand reads one operand of type t at the cursor position.
func ReadOperand(c *cursor.Cursor, t op.OperandType) (Operand, error) {
	o := Operand{Type: t}
	switch t {
	case op.Reg8, op.UInt8:
		v, err := c.U8()
		if err != nil {
			return o, err
		}
		o.Value = int64(v)
	case op.UInt16:
		v, err := c.U16()
		if err != nil {
			return o, err
		}
		o.Value = int64(v)
	case op.Reg32, op.UInt32:
		v, err := c.U32()
		if err != nil {
			return o, err
		}
		o.Value = int64(v)
	case op.Addr8:
		v, err := c.I8()
		if err != nil {
			return o, err
		}
		o.Value = int64(v)
	case op.Addr32, op.Imm32:
		v, err := c.I32()
		if err != nil {
			return o, err
		}
		o.Value = int64(v)
	case op.Double:
		v, err := c.F64()
		if err != nil {
			return o, err
		}
		o.Double = v
	default:
		return o, errz.Format(nil, "unknown operand type %d", t).WithOffset(c.Base() + c.Pos())
	}
	return o, nil
}
