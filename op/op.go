// Package op defines the Hermes bytecode opcodes and the static metadata
// that describes each opcode's operand layout.
//
// The metadata is a fixed input to the decoder. Opcode ordinals match the
// order in which the opcodes appear in Hermes' BytecodeList.def for the
// container version this module reads; jump opcodes are defined in pairs, a
// short form with an 8-bit displacement and a Long form with a 32-bit one.
package op

import "fmt"

// Code is an opcode ordinal as it appears in the instruction stream.
type Code uint8

// OperandType describes the encoding of a single operand.
type OperandType uint8

const (
	Reg8 OperandType = iota
	Reg32
	UInt8
	UInt16
	UInt32
	Addr8
	Addr32
	Imm32
	Double
)

var operandTypeNames = [...]string{
	Reg8:   "Reg8",
	Reg32:  "Reg32",
	UInt8:  "UInt8",
	UInt16: "UInt16",
	UInt32: "UInt32",
	Addr8:  "Addr8",
	Addr32: "Addr32",
	Imm32:  "Imm32",
	Double: "Double",
}

var operandTypeSizes = [...]int{
	Reg8:   1,
	Reg32:  4,
	UInt8:  1,
	UInt16: 2,
	UInt32: 4,
	Addr8:  1,
	Addr32: 4,
	Imm32:  4,
	Double: 8,
}

// String returns the name of the operand type, e.g. "Reg8".
func (t OperandType) String() string {
	if int(t) < len(operandTypeNames) {
		return operandTypeNames[t]
	}
	return fmt.Sprintf("OperandType(%d)", t)
}

// Size returns the encoded width of the operand type in bytes.
func (t OperandType) Size() int {
	if int(t) < len(operandTypeSizes) {
		return operandTypeSizes[t]
	}
	return 0
}

// IsRegister reports whether the operand names a register.
func (t OperandType) IsRegister() bool {
	return t == Reg8 || t == Reg32
}

// IsSigned reports whether the operand is decoded as a signed integer.
func (t OperandType) IsSigned() bool {
	return t == Addr8 || t == Addr32 || t == Imm32
}

// OperandInfo describes one operand position of an opcode.
type OperandInfo struct {
	Type OperandType

	// StringID is set when the operand value is an index into the string table.
	StringID bool

	// FunctionID is set when the operand value is an index into the function table.
	FunctionID bool
}

// Info contains information about an opcode.
type Info struct {
	Code       Code
	Name       string
	Operands   []OperandInfo
	IsJump     bool
	IsCallType bool
}

// OperandCount returns the number of operands the opcode takes.
func (i Info) OperandCount() int {
	return len(i.Operands)
}

// Size returns the encoded size of the instruction in bytes, including the
// opcode byte.
func (i Info) Size() int {
	size := 1
	for _, o := range i.Operands {
		size += o.Type.Size()
	}
	return size
}

// String returns the opcode name.
func (c Code) String() string {
	if info, ok := GetInfo(c); ok {
		return info.Name
	}
	return fmt.Sprintf("Code(%d)", uint8(c))
}

var (
	infos  []Info
	byName map[string]Code
)

// GetInfo returns information about the given opcode. The boolean is false
// when the ordinal is outside the table.
func GetInfo(c Code) (Info, bool) {
	if int(c) >= len(infos) {
		return Info{}, false
	}
	return infos[c], true
}

// Lookup returns the opcode with the given name.
func Lookup(name string) (Code, bool) {
	c, ok := byName[name]
	return c, ok
}

// Count returns the number of defined opcodes.
func Count() int {
	return len(infos)
}

// All returns the metadata of every opcode in ordinal order.
func All() []Info {
	out := make([]Info, len(infos))
	copy(out, infos)
	return out
}
