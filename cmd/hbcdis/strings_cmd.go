package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/hbc/export"
	"github.com/deepnoodle-ai/hbc/internal/table"
)

const maxStringColumn = 60

func (a *app) stringsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strings <input>",
		Short: "List the string table",
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
			strs, err := export.Strings(file)
			if err != nil {
				return err
			}
			if kind := a.v.GetString("kind"); kind != "" {
				filtered := strs[:0]
				for _, s := range strs {
					if s.Kind == kind {
						filtered = append(filtered, s)
					}
				}
				strs = filtered
			}
			if format == "json" {
				return writeJSON(a.stdout, strs)
			}
			rows := make([][]string, len(strs))
			for i, s := range strs {
				enc := "utf-8"
				if s.UTF16 {
					enc = "utf-16"
				}
				rows[i] = []string{strconv.Itoa(s.ID), s.Kind, enc, clip(strconv.Quote(s.Text), maxStringColumn)}
			}
			return table.NewTable(a.stdout).
				WithHeader([]string{"ID", "KIND", "ENCODING", "TEXT"}).
				WithColumnAlignment([]table.Alignment{table.AlignRight, table.AlignLeft, table.AlignLeft, table.AlignLeft}).
				WithRows(rows).
				Render()
		},
	}
	cmd.Flags().StringP("output", "o", "text", "output format: json or text")
	cmd.Flags().String("kind", "", "only list strings of this kind (string or identifier)")
	return cmd
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}
