package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/hbc/internal/table"
	"github.com/deepnoodle-ai/hbc/op"
)

type opcodeInfo struct {
	Code     int      `json:"code"`
	Name     string   `json:"name"`
	Operands []string `json:"operands"`
	Size     int      `json:"size"`
	Jump     bool     `json:"jump,omitempty"`
	Call     bool     `json:"call,omitempty"`
}

func newOpcodeInfo(info op.Info) opcodeInfo {
	operands := make([]string, len(info.Operands))
	for i, o := range info.Operands {
		s := o.Type.String()
		switch {
		case o.StringID:
			s += ":string"
		case o.FunctionID:
			s += ":function"
		}
		operands[i] = s
	}
	return opcodeInfo{
		Code:     int(info.Code),
		Name:     info.Name,
		Operands: operands,
		Size:     info.Size(),
		Jump:     info.IsJump,
		Call:     info.IsCallType,
	}
}

func (a *app) opcodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opcodes [name...]",
		Short: "List opcode metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			format := a.v.GetString("output")
			if err := checkFormat(format, outputFormats); err != nil {
				return err
			}
			var infos []opcodeInfo
			if len(args) == 0 {
				for _, info := range op.All() {
					infos = append(infos, newOpcodeInfo(info))
				}
			}
			for _, name := range args {
				code, ok := op.Lookup(name)
				if !ok {
					return fmt.Errorf("unknown opcode: %s", name)
				}
				info, _ := op.GetInfo(code)
				infos = append(infos, newOpcodeInfo(info))
			}
			if format == "json" {
				return writeJSON(a.stdout, infos)
			}
			rows := make([][]string, len(infos))
			for i, o := range infos {
				var kind []string
				if o.Jump {
					kind = append(kind, "jump")
				}
				if o.Call {
					kind = append(kind, "call")
				}
				rows[i] = []string{
					strconv.Itoa(o.Code), o.Name, strings.Join(o.Operands, ", "),
					strconv.Itoa(o.Size), strings.Join(kind, ","),
				}
			}
			return table.NewTable(a.stdout).
				WithHeader([]string{"CODE", "NAME", "OPERANDS", "SIZE", "KIND"}).
				WithColumnAlignment([]table.Alignment{table.AlignRight, table.AlignLeft, table.AlignLeft, table.AlignRight, table.AlignLeft}).
				WithRows(rows).
				Render()
		},
	}
	cmd.Flags().StringP("output", "o", "text", "output format: json or text")
	return cmd
}
