package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// app holds the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	logger zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: zerolog.Nop(),
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:           "hbcdis",
		Short:         "Decode and disassemble Hermes bytecode",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := a.initConfig(); err != nil {
				return err
			}
			a.initOutput()
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.hbcdis.yaml)")
	flags.Bool("no-color", false, "disable colored output")
	flags.BoolP("verbose", "v", false, "log decode events to stderr")
	flags.String("log-format", "console", "log format: console or json")
	flags.Int64("max-size", 0, "reject inputs larger than this many bytes (0 for no limit)")
	if err := a.v.BindPFlags(flags); err != nil {
		panic(err)
	}

	root.AddCommand(
		a.disCmd(),
		a.infoCmd(),
		a.stringsCmd(),
		a.functionsCmd(),
		a.exportCmd(),
		a.opcodesCmd(),
		a.versionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	msg := err.Error()
	if f, ok := w.(*os.File); ok && isTerminal(f) && !color.NoColor {
		msg = color.RedString(msg)
	}
	fmt.Fprintln(w, msg)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
