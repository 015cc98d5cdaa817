package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/hbc/bytecode"
	"github.com/deepnoodle-ai/hbc/dis"
)

func (a *app) disCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dis <input> [output]",
		Aliases: []string{"d", "disassemble"},
		Short:   "Disassemble a bytecode file to hasm text",
		Long: `Disassemble a bytecode file to hasm text.

The output defaults to <input>.hasm. Use "-" to write to stdout. With
--func, a single function is printed as a table instead.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: a.runDis,
	}
	flags := cmd.Flags()
	flags.Bool("skip-labels", false, "print raw jump offsets instead of labels")
	flags.Bool("no-ids", false, "omit function and string ids")
	flags.Bool("keep-going", false, "continue past functions that fail to decode")
	flags.Int("func", -1, "print only the function with this id as a table")
	flags.BoolP("quiet", "q", false, "suppress timing output")
	return cmd
}

func (a *app) disOptions() dis.Options {
	return dis.Options{
		SkipLabels: a.v.GetBool("skip-labels"),
		NoIDs:      a.v.GetBool("no-ids"),
		KeepGoing:  a.v.GetBool("keep-going"),
	}
}

func (a *app) runDis(cmd *cobra.Command, args []string) error {
	input := args[0]
	opts := a.disOptions()
	t := timer{w: a.stderr, quiet: a.v.GetBool("quiet")}

	if id := a.v.GetInt("func"); id >= 0 {
		file, err := a.open(input)
		if err != nil {
			return err
		}
		return a.printFunction(file, id, opts)
	}

	output := input + ".hasm"
	if len(args) > 1 {
		output = args[1]
	}

	start := time.Now()
	t.printf("Disassembling %s\n", color.HiYellowString(input))

	var file *bytecode.File
	err := t.time("Read file", func() error {
		var err error
		file, err = a.open(input)
		return err
	})
	if err != nil {
		return err
	}

	var (
		buf     bytes.Buffer
		skipped error
	)
	err = t.time("Wrote functions", func() error {
		err := dis.Disassemble(file, &buf, opts)
		if err != nil && opts.KeepGoing {
			skipped = err
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	if output == "-" {
		if _, err := buf.WriteTo(a.stdout); err != nil {
			return err
		}
	} else {
		err := t.time("Wrote to "+color.YellowString(output), func() error {
			return os.WriteFile(output, buf.Bytes(), 0o644)
		})
		if err != nil {
			return err
		}
	}
	t.log("Done", start)

	// The functions that decoded were written; still fail the command so
	// scripts notice the gaps.
	if skipped != nil {
		return fmt.Errorf("some functions were skipped: %w", skipped)
	}
	return nil
}

func (a *app) printFunction(file *bytecode.File, id int, opts dis.Options) error {
	fn, err := file.Function(id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, fn.String())
	return dis.Print(file, fn, a.stdout, opts)
}
