package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/deepnoodle-ai/hbc/bytecode"
	"github.com/deepnoodle-ai/hbc/internal/table"
	"github.com/deepnoodle-ai/hbc/op"
)

var (
	bold    = color.New(color.Bold).SprintFunc()
	italic  = color.New(color.Italic).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
	cyan    = color.New(color.FgHiCyan).SprintFunc()
)

// maxInfoString is the longest string shown in the INFO column before it
// is truncated.
const maxInfoString = 80

// Print writes one function to w as a table with one row per instruction.
// Referenced strings and functions are resolved into the INFO column.
func Print(file *bytecode.File, fn *bytecode.Function, w io.Writer, opts Options) error {
	instructions, err := fn.Instructions()
	if err != nil {
		return err
	}
	if !opts.SkipLabels {
		if err := fn.DetectLabels(); err != nil {
			return err
		}
	}

	rows := make([][]string, 0, len(instructions))
	for _, ins := range instructions {
		var label string
		if !opts.SkipLabels && ins.Label != 0 {
			label = cyan(fmt.Sprintf("L%d", ins.Label))
		}
		info, err := annotate(file, ins)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			strconv.Itoa(ins.Offset),
			label,
			bold(ins.Name()),
			rawOperands(ins, opts),
			info,
		})
	}

	return table.NewTable(w).
		WithHeader([]string{"OFFSET", "LABEL", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(rows).
		Render()
}

func rawOperands(ins *bytecode.Instruction, opts Options) string {
	parts := make([]string, len(ins.Operands))
	for i, o := range ins.Operands {
		if i == 0 && !opts.SkipLabels && ins.TargetLabel != 0 {
			parts[i] = cyan("L" + strconv.Itoa(ins.TargetLabel))
			continue
		}
		if o.Type == op.Double {
			parts[i] = FormatNumber(o.Double)
			continue
		}
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}

func annotate(file *bytecode.File, ins *bytecode.Instruction) (string, error) {
	var notes []string
	for _, o := range ins.Operands {
		switch {
		case o.StringID:
			s, err := file.String(int(o.Value))
			if err != nil {
				return "", err
			}
			if r := []rune(s); len(r) > maxInfoString {
				s = string(r[:maxInfoString-3]) + "..."
			}
			notes = append(notes, green(quote(escape(s))))
		case o.FunctionID:
			fn, err := file.Function(int(o.Value))
			if err != nil {
				return "", err
			}
			name := fn.Name()
			if name == "" {
				name = italic("<anonymous>")
			}
			notes = append(notes, magenta("func:"+name))
		}
	}
	return strings.Join(notes, ", "), nil
}
