// Package dis renders decoded Hermes bytecode as hasm text, the textual
// form used by the hasm assembler, and as tables for interactive viewing.
package dis

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/hbc/bytecode"
	"github.com/deepnoodle-ai/hbc/op"
)

// Options controls disassembly output.
type Options struct {
	// SkipLabels prints raw jump offsets instead of labels.
	SkipLabels bool

	// NoIDs omits numeric function and string ids. Unnamed functions are
	// identified by a hash of their opcode sequence instead, which keeps
	// the output stable across builds that renumber functions.
	NoIDs bool

	// KeepGoing continues past functions that fail to decode. Failed
	// functions are left out of the output and their errors are returned
	// together once every function has been written.
	KeepGoing bool
}

// Disassemble writes the hasm text of every function in file to w.
func Disassemble(file *bytecode.File, w io.Writer, opts Options) error {
	iw := NewIndentedWriter(w)
	iw.WriteLine("version " + strconv.FormatUint(uint64(file.Version()), 10))
	iw.WriteLine("")
	if err := iw.Err(); err != nil {
		return err
	}

	var errs *multierror.Error
	for id := 0; id < file.FunctionCount(); id++ {
		fn, err := file.Function(id)
		if err == nil {
			err = DisassembleFunction(file, fn, w, opts)
		}
		if err == nil {
			continue
		}
		if !opts.KeepGoing {
			return err
		}
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

// DisassembleFunction writes the hasm block of a single function to w.
// Nothing is written when the function cannot be rendered.
func DisassembleFunction(file *bytecode.File, fn *bytecode.Function, w io.Writer, opts Options) error {
	instructions, err := fn.Instructions()
	if err != nil {
		return err
	}
	if !opts.SkipLabels {
		if err := fn.DetectLabels(); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	iw := NewIndentedWriter(&buf)
	head, err := functionHead(fn, opts)
	if err != nil {
		return err
	}
	iw.WriteLine(head)
	iw.Indent += 2
	for _, ins := range instructions {
		if !opts.SkipLabels && ins.Label != 0 {
			iw.Indent -= 2
			iw.WriteLine(fmt.Sprintf("L%d:", ins.Label))
			iw.Indent += 2
		}
		line, err := FormatInstruction(file, ins, opts)
		if err != nil {
			return err
		}
		iw.WriteLine(line)
	}
	iw.Indent -= 2
	iw.WriteLine("}")
	iw.WriteLine("")

	_, err = buf.WriteTo(w)
	return err
}

func functionHead(fn *bytecode.Function, opts Options) (string, error) {
	var options []string
	if name := fn.Name(); name != "" {
		v := comment(escape(name))
		if !opts.NoIDs {
			v = strconv.FormatUint(uint64(fn.Header().FunctionName), 10) + " " + v
		}
		options = append(options, "name = "+v)
	}
	if p := fn.ProhibitInvoke(); p != bytecode.ProhibitNone {
		options = append(options, "prohibitInvoke = "+p.String())
	}

	var b strings.Builder
	b.WriteString("function ")
	switch {
	case !opts.NoIDs:
		b.WriteString(strconv.Itoa(fn.ID()) + " ")
	case fn.Name() == "":
		hash, err := opcodeHash(fn)
		if err != nil {
			return "", err
		}
		b.WriteString(hash + " ")
	}
	if len(options) > 0 {
		b.WriteString("(" + strings.Join(options, ", ") + ") ")
	}
	b.WriteString("{")
	return b.String(), nil
}

// FormatInstruction returns the hasm line of ins without indentation.
// Jump operands print as labels only if the function's labels have been
// detected.
func FormatInstruction(file *bytecode.File, ins *bytecode.Instruction, opts Options) (string, error) {
	if len(ins.Operands) == 0 {
		return ins.Name(), nil
	}
	parts := make([]string, len(ins.Operands))
	for i, o := range ins.Operands {
		s, err := formatOperand(file, ins, i, o, opts)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return ins.Name() + " " + strings.Join(parts, ", "), nil
}

func formatOperand(file *bytecode.File, ins *bytecode.Instruction, i int, o bytecode.Operand, opts Options) (string, error) {
	if o.IsRegister() {
		return "r" + strconv.FormatInt(o.Value, 10), nil
	}
	if o.FunctionID {
		fn, err := file.Function(int(o.Value))
		if err != nil {
			return "", err
		}
		if name := fn.Name(); name != "" {
			return withID(o.Value, comment(escape(name)), opts), nil
		}
		if opts.NoIDs {
			hash, err := opcodeHash(fn)
			if err != nil {
				return "", err
			}
			return comment(hash), nil
		}
	}
	if i == 0 && !opts.SkipLabels && ins.TargetLabel != 0 {
		return "L" + strconv.Itoa(ins.TargetLabel), nil
	}
	if o.StringID {
		s, err := file.String(int(o.Value))
		if err != nil {
			return "", err
		}
		return withID(o.Value, comment(quote(escape(s))), opts), nil
	}
	if o.Type == op.Double {
		return FormatNumber(o.Double), nil
	}
	return strconv.FormatInt(o.Value, 10), nil
}

func withID(id int64, annotation string, opts Options) string {
	if opts.NoIDs {
		return annotation
	}
	return strconv.FormatInt(id, 10) + " " + annotation
}

// opcodeHash returns the hex SHA-1 of the function's opcode names
// concatenated in instruction order.
func opcodeHash(fn *bytecode.Function) (string, error) {
	instructions, err := fn.Instructions()
	if err != nil {
		return "", err
	}
	h := sha1.New()
	for _, ins := range instructions {
		io.WriteString(h, ins.Name())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
