package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/hbc/export"
)

var exportFormats = []string{"json", "cbor", "sqlite"}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <input>",
		Short: "Export strings, functions and instructions for diffing",
		Long: `Export strings, functions and instructions for diffing.

JSON and CBOR are written to stdout unless --out is given. SQLite needs
--out and creates the tables strings, functions, instructions, handlers
and meta.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runExport,
	}
	flags := cmd.Flags()
	flags.StringP("format", "f", "json", "export format: json, cbor or sqlite")
	flags.String("out", "", "output path")
	flags.Bool("skip-labels", false, "leave jump operands as raw offsets")
	flags.Bool("keep-going", false, "record decode errors per function instead of failing")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(a.v.GetString("format"))
	if err := checkFormat(format, exportFormats); err != nil {
		return err
	}
	out := a.v.GetString("out")
	if format == "sqlite" && out == "" {
		return fmt.Errorf("sqlite export needs --out")
	}

	file, err := a.open(args[0])
	if err != nil {
		return err
	}
	img, err := export.Build(file, export.Options{
		SkipLabels: a.v.GetBool("skip-labels"),
		KeepGoing:  a.v.GetBool("keep-going"),
	})
	if err != nil {
		return err
	}
	a.logger.Debug().
		Int("strings", len(img.Strings)).
		Int("functions", len(img.Functions)).
		Str("format", format).
		Msg("built export")

	if format == "sqlite" {
		return export.WriteSQLite(cmd.Context(), out, img)
	}

	write := export.WriteJSON
	if format == "cbor" {
		write = export.WriteCBOR
	}
	if out == "" || out == "-" {
		return write(a.stdout, img)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw, img); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
