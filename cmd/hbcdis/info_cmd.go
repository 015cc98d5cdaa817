package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/hbc/bytecode"
	"github.com/deepnoodle-ai/hbc/internal/table"
)

type headerInfo struct {
	Version                      uint32 `json:"version"`
	SourceHash                   string `json:"sourceHash"`
	FileLength                   uint32 `json:"fileLength"`
	GlobalCodeIndex              uint32 `json:"globalCodeIndex"`
	FunctionCount                uint32 `json:"functionCount"`
	StringKindCount              uint32 `json:"stringKindCount"`
	IdentifierCount              uint32 `json:"identifierCount"`
	StringCount                  uint32 `json:"stringCount"`
	OverflowStringCount          uint32 `json:"overflowStringCount"`
	StringStorageSize            uint32 `json:"stringStorageSize"`
	RegExpCount                  uint32 `json:"regExpCount"`
	RegExpStorageSize            uint32 `json:"regExpStorageSize"`
	ArrayBufferSize              uint32 `json:"arrayBufferSize"`
	ObjKeyBufferSize             uint32 `json:"objKeyBufferSize"`
	ObjValueBufferSize           uint32 `json:"objValueBufferSize"`
	SegmentID                    uint32 `json:"segmentId"`
	CJSModuleCount               uint32 `json:"cjsModuleCount"`
	FunctionSourceCount          uint32 `json:"functionSourceCount"`
	DebugInfoOffset              uint32 `json:"debugInfoOffset"`
	StaticBuiltins               bool   `json:"staticBuiltins"`
	CJSModulesStaticallyResolved bool   `json:"cjsModulesStaticallyResolved"`
	HasAsync                     bool   `json:"hasAsync"`
}

func newHeaderInfo(h *bytecode.FileHeader) headerInfo {
	return headerInfo{
		Version:                      h.Version,
		SourceHash:                   hex.EncodeToString(h.SourceHash[:]),
		FileLength:                   h.FileLength,
		GlobalCodeIndex:              h.GlobalCodeIndex,
		FunctionCount:                h.FunctionCount,
		StringKindCount:              h.StringKindCount,
		IdentifierCount:              h.IdentifierCount,
		StringCount:                  h.StringCount,
		OverflowStringCount:          h.OverflowStringCount,
		StringStorageSize:            h.StringStorageSize,
		RegExpCount:                  h.RegExpCount,
		RegExpStorageSize:            h.RegExpStorageSize,
		ArrayBufferSize:              h.ArrayBufferSize,
		ObjKeyBufferSize:             h.ObjKeyBufferSize,
		ObjValueBufferSize:           h.ObjValueBufferSize,
		SegmentID:                    h.SegmentID,
		CJSModuleCount:               h.CJSModuleCount,
		FunctionSourceCount:          h.FunctionSourceCount,
		DebugInfoOffset:              h.DebugInfoOffset,
		StaticBuiltins:               h.StaticBuiltins(),
		CJSModulesStaticallyResolved: h.CJSModulesStaticallyResolved(),
		HasAsync:                     h.HasAsync(),
	}
}

func (h headerInfo) rows() [][]string {
	u := func(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
	b := strconv.FormatBool
	return [][]string{
		{"version", u(h.Version)},
		{"source hash", h.SourceHash},
		{"file length", u(h.FileLength)},
		{"global code index", u(h.GlobalCodeIndex)},
		{"functions", u(h.FunctionCount)},
		{"string kinds", u(h.StringKindCount)},
		{"identifiers", u(h.IdentifierCount)},
		{"strings", u(h.StringCount)},
		{"overflow strings", u(h.OverflowStringCount)},
		{"string storage", u(h.StringStorageSize)},
		{"regexps", u(h.RegExpCount)},
		{"regexp storage", u(h.RegExpStorageSize)},
		{"array buffer", u(h.ArrayBufferSize)},
		{"object key buffer", u(h.ObjKeyBufferSize)},
		{"object value buffer", u(h.ObjValueBufferSize)},
		{"segment id", u(h.SegmentID)},
		{"cjs modules", u(h.CJSModuleCount)},
		{"function sources", u(h.FunctionSourceCount)},
		{"debug info offset", fmt.Sprintf("0x%x", h.DebugInfoOffset)},
		{"static builtins", b(h.StaticBuiltins)},
		{"cjs modules resolved", b(h.CJSModulesStaticallyResolved)},
		{"has async", b(h.HasAsync)},
	}
}

func (a *app) infoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <input>",
		Short: "Print the file header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := a.v.GetString("output")
			if err := checkFormat(format, outputFormats); err != nil {
				return err
			}
			file, err := a.open(args[0])
			if err != nil {
				return err
			}
			info := newHeaderInfo(file.Header())
			if format == "json" {
				return writeJSON(a.stdout, info)
			}
			return table.NewTable(a.stdout).
				WithHeader([]string{"FIELD", "VALUE"}).
				WithHeaderAlignment([]table.Alignment{table.AlignCenter, table.AlignCenter}).
				WithColumnAlignment([]table.Alignment{table.AlignLeft, table.AlignRight}).
				WithRows(info.rows()).
				Render()
		},
	}
	cmd.Flags().StringP("output", "o", "text", "output format: json or text")
	return cmd
}
