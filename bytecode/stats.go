package bytecode

// Stats contains statistics about one decoded function.
// This is useful for auditing a bundle before disassembling it in full.
type Stats struct {
	// InstructionCount is the number of decoded instructions.
	InstructionCount int

	// ByteCount is the size of the function's bytecode in bytes.
	ByteCount int

	// JumpCount is the number of relative jump instructions.
	JumpCount int

	// CallCount is the number of call-type instructions.
	CallCount int

	// LabelCount is the number of distinct jump targets. It is zero until
	// labels have been detected.
	LabelCount int

	// StringRefs is the number of operands that reference a string id.
	StringRefs int

	// FunctionRefs is the number of operands that reference a function id.
	FunctionRefs int
}
