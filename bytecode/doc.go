// Package bytecode decodes Hermes bytecode containers.
//
// A container is a single buffer holding a fixed header followed by a
// sequence of 4-byte aligned table regions: function headers, string
// kinds, identifier hashes, the string table and its overflow table,
// string storage, three literal buffers, the regexp table and storage, and
// two tables of u32 pairs for CommonJS modules and function sources.
//
// # Key Types
//
//   - [File]: A decoded container with lazily resolved strings and functions
//   - [Data]: Low-level access to every table region
//   - [Function]: One function with its resolved header and name
//   - [Instruction]: A decoded instruction with its operands and labels
//   - [FunctionHeader]: A function header in either of its two encodings
//
// # Laziness
//
// [Read] decodes only the header and the tables. Strings and functions are
// index-addressable and resolved on first access, once:
//
//	file, err := bytecode.Read(buf, nil)
//	if err != nil {
//	    return err
//	}
//	fn, err := file.Function(0)   // resolves the header and the name
//	ins, err := fn.Instructions() // decodes the bytecode
//
// Constructing a Function follows the large-header indirection when the
// compact header is overflowed, and resolves its name through the string
// table. Instruction decoding stays deferred until Instructions is called.
//
// # Buffer Ownership
//
// Every cursor, byte region and function body aliases the buffer given to
// [Read]. Nothing is copied and nothing is written.
//
// # Errors
//
// Failures are returned as [github.com/deepnoodle-ai/hbc/errz.Error]
// values. A bad magic, a truncated region or an unknown opcode is a format
// error; a jump to a non-instruction offset is a consistency error reported
// by [Function.DetectLabels].
package bytecode
