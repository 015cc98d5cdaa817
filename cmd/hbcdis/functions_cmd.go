package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/hbc/bytecode"
	"github.com/deepnoodle-ai/hbc/internal/table"
)

type functionInfo struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Form            string `json:"form"`
	Offset          uint32 `json:"offset"`
	Size            uint32 `json:"size"`
	ParamCount      uint32 `json:"paramCount"`
	FrameSize       uint32 `json:"frameSize"`
	EnvironmentSize uint32 `json:"environmentSize"`
	ProhibitInvoke  string `json:"prohibitInvoke"`
	Flags           string `json:"flags,omitempty"`
}

func newFunctionInfo(fn *bytecode.Function) functionInfo {
	h := fn.Header()
	var flags []string
	if h.Flags.StrictMode {
		flags = append(flags, "strict")
	}
	if h.Flags.HasExceptionHandler {
		flags = append(flags, "handlers")
	}
	if h.Flags.HasDebugInfo {
		flags = append(flags, "debug")
	}
	return functionInfo{
		ID:              fn.ID(),
		Name:            fn.Name(),
		Form:            h.Form.String(),
		Offset:          h.Offset,
		Size:            h.BytecodeSizeInBytes,
		ParamCount:      h.ParamCount,
		FrameSize:       h.FrameSize,
		EnvironmentSize: h.EnvironmentSize,
		ProhibitInvoke:  h.Flags.ProhibitInvoke.String(),
		Flags:           strings.Join(flags, ","),
	}
}

func (a *app) functionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "functions <input>",
		Aliases: []string{"fns"},
		Short:   "List function headers",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := a.v.GetString("output")
			if err := checkFormat(format, outputFormats); err != nil {
				return err
			}
			file, err := a.open(args[0])
			if err != nil {
				return err
			}
			infos := make([]functionInfo, 0, file.FunctionCount())
			for id := 0; id < file.FunctionCount(); id++ {
				fn, err := file.Function(id)
				if err != nil {
					return err
				}
				infos = append(infos, newFunctionInfo(fn))
			}
			if format == "json" {
				return writeJSON(a.stdout, infos)
			}
			u := func(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
			rows := make([][]string, len(infos))
			for i, f := range infos {
				name := f.Name
				if name == "" {
					name = "<anonymous>"
				}
				rows[i] = []string{
					strconv.Itoa(f.ID), name, f.Form, u(f.Offset), u(f.Size),
					u(f.ParamCount), u(f.FrameSize), u(f.EnvironmentSize),
					f.ProhibitInvoke, f.Flags,
				}
			}
			right, left := table.AlignRight, table.AlignLeft
			return table.NewTable(a.stdout).
				WithHeader([]string{"ID", "NAME", "FORM", "OFFSET", "SIZE", "PARAMS", "FRAME", "ENV", "PROHIBIT", "FLAGS"}).
				WithColumnAlignment([]table.Alignment{right, left, left, right, right, right, right, right, left, left}).
				WithRows(rows).
				Render()
		},
	}
	cmd.Flags().StringP("output", "o", "text", "output format: json or text")
	return cmd
}
