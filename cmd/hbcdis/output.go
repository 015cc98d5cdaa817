package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"

	"github.com/deepnoodle-ai/hbc"
	"github.com/deepnoodle-ai/hbc/bytecode"
)

var outputFormats = []string{"json", "text"}

func checkFormat(format string, allowed []string) error {
	for _, f := range allowed {
		if strings.EqualFold(format, f) {
			return nil
		}
	}
	return fmt.Errorf("unknown output format: %s (want %s)", format, strings.Join(allowed, " or "))
}

// writeJSON writes v as indented JSON, highlighted unless color is off.
func writeJSON(w io.Writer, v any) error {
	var (
		data []byte
		err  error
	)
	if color.NoColor {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = prettyjson.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// timer prints progress lines of the form "<tag> in 0.0123s" to the
// error stream so they never mix with output written to stdout.
type timer struct {
	w     io.Writer
	quiet bool
}

func (t timer) log(tag string, start time.Time) {
	if t.quiet {
		return
	}
	secs := time.Since(start).Seconds()
	fmt.Fprintf(t.w, "%s in %s\n", tag, color.CyanString("%.4fs", secs))
}

func (t timer) time(tag string, fn func() error) error {
	start := time.Now()
	if err := fn(); err != nil {
		return err
	}
	t.log(tag, start)
	return nil
}

func (t timer) printf(format string, args ...any) {
	if !t.quiet {
		fmt.Fprintf(t.w, format, args...)
	}
}

// open reads the container at path with the command's logger attached.
func (a *app) open(path string) (*bytecode.File, error) {
	opts := []hbc.Option{hbc.WithMaxFileSize(a.v.GetInt64("max-size"))}
	if a.v.GetBool("verbose") {
		opts = append(opts, hbc.WithLogger(a.logger))
	}
	return hbc.Open(path, opts...)
}
